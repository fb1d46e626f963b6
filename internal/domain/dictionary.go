package domain

// DictionaryEntry is a read-only entry returned by the dictionary collaborator.
type DictionaryEntry struct {
	Word          string       `json:"word"`
	Pronunciation string       `json:"pronunciation"`
	Definitions   []Definition `json:"definitions"`
	Synonyms      []string     `json:"synonyms"`
	Antonyms      []string     `json:"antonyms"`
}
