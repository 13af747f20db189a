// Command cpp is a standalone C-style source preprocessor: trigraph
// translation, line splicing, comment stripping, conditional
// compilation, and macro expansion, driven entirely from flags — no
// external compiler is ever shelled out to.
package main

import (
	"fmt"
	"os"

	"github.com/raymyers/cpreproc/pkg/cpp"
	"github.com/spf13/cobra"
)

// longFlagNames lists every boolean/no-argument flag this CLI exposes
// in CompCert style, i.e. conventionally written with a single dash
// even though the name is multiple characters long ("-debug", not
// "-d"). pflag only recognizes multi-character names behind a double
// dash, so normalizeFlags rewrites a lone leading dash to two before
// cobra ever sees argv, the same shim the teacher CLI uses for its
// own single-dash flags.
var longFlagNames = map[string]bool{
	"stdin":          true,
	"no_blank_lines": true,
	"echo":           true,
	"debug":          true,
	"quiet":          true,
	"skip_std":       true,
	"list_includes":  true,
}

// normalizeFlags rewrites "-name" to "--name" for every name in
// longFlagNames, leaving short attached-value flags (-Dfoo, -Ipath,
// -Ufoo, -o file) and everything else untouched.
func normalizeFlags(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' && a[1] != '-' {
			name := a[1:]
			if eq := indexByte(name, '='); eq >= 0 {
				name = name[:eq]
			}
			if longFlagNames[name] {
				out[i] = "-" + a
				continue
			}
		}
		out[i] = a
	}
	return out
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func main() {
	var (
		defines      []string
		undefines    []string
		includeDirs  []string
		outputPath   string
		stdin        bool
		noBlankLines bool
		echo         bool
		debug        bool
		quiet        bool
		skipStd      bool
		listIncludes bool
	)

	rootCmd := &cobra.Command{
		Use:   "cpp [flags] [file]",
		Short: "Preprocess a C-style source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var inputPath string
			if !stdin && len(args) == 1 {
				inputPath = args[0]
			}

			out := os.Stdout
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					fmt.Fprintf(os.Stderr, "cpp: %v\n", err)
					return nil
				}
				defer f.Close()
				out = f
			}

			var echoWriter *os.File
			if echo {
				echoWriter = os.Stderr
			}

			opts := cpp.Options{
				Defines:      defines,
				Undefines:    undefines,
				IncludeDirs:  includeDirs,
				SkipStd:      skipStd,
				NoBlankLines: noBlankLines,
				Debug:        debug,
				Quiet:        quiet,
				Output:       out,
			}
			if echoWriter != nil {
				opts.Echo = echoWriter
			}

			p, err := cpp.NewPreprocessor(opts)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return nil
			}
			if err := p.Run(inputPath); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return nil
			}

			diags := p.Diagnostics()
			diags.Flush(os.Stderr)

			if listIncludes {
				for _, line := range p.IncludeTreeLines() {
					fmt.Fprintln(os.Stderr, line)
				}
			}

			// No error terminates processing: diagnostics are reported
			// to stderr, but the exit code is always 0.
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringArrayVarP(&defines, "define", "D", nil, "define NAME or NAME=VALUE or NAME(params)=VALUE")
	flags.StringArrayVarP(&undefines, "undefine", "U", nil, "undefine NAME")
	flags.StringArrayVarP(&includeDirs, "include-dir", "I", nil, "add DIR to the #include search path")
	flags.StringVarP(&outputPath, "output", "o", "", "write output to FILE instead of stdout")
	flags.BoolVar(&stdin, "stdin", false, "read the input from stdin even if a file argument is given")
	flags.BoolVar(&noBlankLines, "no_blank_lines", false, "suppress blank lines produced by empty or whitespace-only output")
	flags.BoolVar(&echo, "echo", false, "echo every raw input line to stderr as it is read")
	flags.BoolVar(&debug, "debug", false, "trace every directive processed to stderr")
	flags.BoolVar(&quiet, "quiet", false, "suppress warning diagnostics")
	flags.BoolVar(&skipStd, "skip_std", false, "silently skip angled (system) #include directives")
	flags.BoolVar(&listIncludes, "list_includes", false, "report the discovered #include tree on stderr")

	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
