package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// Word text is analyzed without stemming so fuzzy and prefix queries work on
// the form the user typed. Meanings get English stemming.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name
	textFieldMapping.Store = true
	textFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("text", textFieldMapping)

	// Whole normalized form as one term, for exact and fuzzy matching of phrases.
	normalizedFieldMapping := bleve.NewTextFieldMapping()
	normalizedFieldMapping.Analyzer = keyword.Name
	normalizedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("normalized", normalizedFieldMapping)

	meaningFieldMapping := bleve.NewTextFieldMapping()
	meaningFieldMapping.Analyzer = en.AnalyzerName
	meaningFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("meaning", meaningFieldMapping)

	synonymsFieldMapping := bleve.NewTextFieldMapping()
	synonymsFieldMapping.Analyzer = simple.Name
	synonymsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("synonyms", synonymsFieldMapping)

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
