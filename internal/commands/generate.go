package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"minecraft-codegen/internal/generator"
)

// terminalSink prints only what each redraw adds to the previous one.
type terminalSink struct {
	w       io.Writer
	printed int
}

func (t *terminalSink) Render(text string) error {
	if len(text) <= t.printed {
		return nil
	}
	n, err := io.WriteString(t.w, text[t.printed:])
	t.printed += n
	return err
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "generate [description]",
		Short: "Generate Minecraft code and record it in the history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd, args, fileFlag)
			if err != nil {
				return err
			}

			gen := opts.app.Generator
			out := cmd.OutOrStdout()
			sink := &terminalSink{w: out}
			res, err := gen.Generate(cmd.Context(), prompt, sink)
			if sink.printed > 0 {
				fmt.Fprintln(out)
			}
			if err == nil {
				return nil
			}
			msg := generator.Describe(err, opts.app.Config.CredentialVar())
			if res.State == generator.StateCompleted {
				// produced but not saved
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", msg)
				return nil
			}
			return errors.New(msg)
		},
	}

	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the description from a file")
	return cmd
}

// readPrompt takes the description from --file, the argument or stdin, in
// that order.
func readPrompt(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
