package cmd

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/mzmerge/pkg/pipeline"
	"github.com/ChrisMcGann/mzmerge/pkg/sample"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check that sample tables can be merged",
	Long: `Parse the name and table of every file the way merge does, without
aggregating. Prints OK or the reason a file would be skipped and exits with
an error if any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	params, err := loadParams(cmd)
	if err != nil {
		return err
	}

	vocab, err := params.Vocabulary()
	if err != nil {
		return err
	}

	rep := newReporter(cmd)
	rep.Info("Recognizing %d group tokens: %s", vocab.Len(), describeTokens(vocab))

	p := pipeline.New(pipeline.Options{
		Extractor: sample.NewExtractor(vocab),
		Normalize: params.Normalize(),
		Threads:   params.Threads,
		Reporter:  rep,
	})

	results, err := p.LoadAll(cmd.Context(), sources(args))
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Skipped() {
			failed++
			rep.Warn("%s: %v", res.Name, res.Err)
			continue
		}
		rep.Info("OK %s: %s, %d peaks, %d records", res.Name, res.Metadata, len(res.Result.Peaks), len(res.Result.Records))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	rep.Success("All %d files are valid", len(args))
	return nil
}

// describeTokens lists the tokens in search order, with the display form of
// tokens that are renamed, e.g. "921 (92.1)".
func describeTokens(v *sample.Vocabulary) string {
	tokens := v.Tokens()
	for i, t := range tokens {
		if d, ok := v.Display(t); ok && d != t {
			tokens[i] = fmt.Sprintf("%s (%s)", t, d)
		}
	}
	return strings.Join(tokens, ", ")
}
