package sample

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

// knownSuffixes are stripped from sample names before matching.
var knownSuffixes = []string{".csv", ".xlsx"}

// replicatePattern is a letters-then-digits token such as "A1" or "B12".
var replicatePattern = regexp.MustCompile(`([A-Za-z]+)(\d+)`)

// Extractor parses sample names against a vocabulary. It is safe for
// concurrent use once the vocabulary is no longer modified.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an extractor. A nil vocabulary selects
// DefaultVocabulary.
func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Parse derives group and replicate tags from a sample identifier such as
// "Mel202A1.csv" or "921B3.csv". The replicate token is searched in the name
// with the group token removed, so digits belonging to the group are never
// read as a replicate. Failures are *core.MetadataError.
func (e *Extractor) Parse(name string) (core.SampleMetadata, error) {
	base := StripSuffix(filepath.Base(name))

	group, start, end, ok := e.vocab.Match(base)
	if !ok {
		return core.SampleMetadata{}, &core.MetadataError{Sample: base, Reason: core.MissingGroup}
	}

	rest := base[:start] + " " + base[end:]
	m := replicatePattern.FindStringSubmatch(rest)
	if m == nil {
		return core.SampleMetadata{}, &core.MetadataError{Sample: base, Reason: core.MissingReplicate}
	}

	return core.SampleMetadata{
		Group:         group,
		BioReplicate:  m[1],
		TechReplicate: m[2],
	}, nil
}

// StripSuffix removes known file suffixes from a sample name.
func StripSuffix(name string) string {
	for _, s := range knownSuffixes {
		name = strings.ReplaceAll(name, s, "")
	}
	return name
}
