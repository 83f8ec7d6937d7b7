/*
Parsegen loads a grammar configuration, compiles it into an LL(1) or
LR(0)/SLR parse table, and reports the result.

It reads the grammar text from the file named by -g/--grammar, optionally
consults a compiled-grammar cache directory (-c/--cache) so repeat runs over
an unchanged grammar skip re-tokenizing and re-parsing it, and prints the
grammar's productions as loaded. If -t/--tokens and -i/--input are both
given, it also tokenizes the input file against the declared token patterns
and drives the compiled parser to completion (or to the first syntax
error); with -V/--verbose each reduction is logged.

Usage:

	parsegen [flags]

The flags are:

	-v, --version
		Give the current version of parsegen and then exit.

	-C, --config FILE
		Read default flag values from a TOML config file. Flags given on the
		command line override the config file.

	-g, --grammar FILE
		The grammar configuration file to load. Defaults to "grammar.conf".

	-e, --engine {ll1,lr0}
		Which parser engine to compile the grammar for. Defaults to "lr0".

	-c, --cache DIR
		A directory to cache compiled grammars in, keyed by content hash. If
		unset, grammars are always rebuilt from scratch.

	-t, --tokens FILE
		A TOML file declaring the token patterns the grammar's token block
		names, in the form:

			[tokens.NUM]
			pattern = "[0-9]+"

			[tokens.NL]
			pattern = "\n"
			newline = true

	-i, --input FILE
		An input file to tokenize and parse once the grammar is compiled.
		Requires -t/--tokens.

	-V, --verbose
		Log build diagnostics and each reduction to stderr.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/rosed"
	"github.com/google/uuid"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/spf13/pflag"

	"github.com/dekarrin/parsegen"
	"github.com/dekarrin/parsegen/internal/ictiobus/grammar"
	"github.com/dekarrin/parsegen/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitConfigError indicates a problem with the CLI's own flags, config
	// file, grammar file, or token-pattern file.
	ExitConfigError

	// ExitGrammarError indicates the grammar failed to compile into the
	// requested engine (a conflict, left recursion, or malformed config).
	ExitGrammarError

	// ExitParseError indicates the input file did not belong to the
	// compiled grammar's language.
	ExitParseError
)

// fileConfig is the optional TOML config file's shape; any field left unset
// falls through to the corresponding flag's default.
type fileConfig struct {
	Grammar string `toml:"grammar"`
	Tokens  string `toml:"tokens"`
	Cache   string `toml:"cache"`
	Engine  string `toml:"engine"`
}

// tokenFile is the token-pattern file's shape.
type tokenFile struct {
	Tokens map[string]tokenEntry `toml:"tokens"`
}

type tokenEntry struct {
	Pattern string `toml:"pattern"`
	Newline bool   `toml:"newline"`
}

var (
	returnCode = ExitSuccess

	flagVersion   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagConfig    = pflag.StringP("config", "C", "", "TOML config file of default flag values")
	flagGrammar   = pflag.StringP("grammar", "g", "grammar.conf", "The grammar configuration file to load")
	flagEngine    = pflag.StringP("engine", "e", "lr0", "Parser engine to compile for: \"ll1\" or \"lr0\"")
	flagCache     = pflag.StringP("cache", "c", "", "Directory to cache compiled grammars in")
	flagTokens    = pflag.StringP("tokens", "t", "", "TOML file declaring token patterns")
	flagInput     = pflag.StringP("input", "i", "", "Input file to tokenize and parse")
	flagVerbose   = pflag.BoolP("verbose", "V", false, "Log build diagnostics and each reduction")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagVerbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	runID := uuid.New().String()

	if err := run(runID); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
	}
}

func run(runID string) error {
	cfg, err := loadFileConfig(*flagConfig)
	if err != nil {
		returnCode = ExitConfigError
		return err
	}
	grammarPath, engineName := *flagGrammar, *flagEngine
	if !pflag.CommandLine.Changed("grammar") && cfg.Grammar != "" {
		grammarPath = cfg.Grammar
	}
	if !pflag.CommandLine.Changed("engine") && cfg.Engine != "" {
		engineName = cfg.Engine
	}
	tokensPath := firstNonEmpty(*flagTokens, cfg.Tokens, "")
	cacheDir := firstNonEmpty(*flagCache, cfg.Cache, "")

	kind, err := parseEngineKind(engineName)
	if err != nil {
		returnCode = ExitConfigError
		return err
	}

	grammarSrc, err := os.ReadFile(grammarPath)
	if err != nil {
		returnCode = ExitConfigError
		return fmt.Errorf("reading grammar file: %w", err)
	}

	var patterns []parsegen.Pattern
	if tokensPath != "" {
		// Patterns must line up with the grammar's own token declaration
		// order (lex.New maps pattern i to FirstTokenID+i), so the
		// grammar is loaded once here, ahead of parsegen.Build's own
		// load, purely to recover that order.
		g, err := grammar.Load(string(grammarSrc))
		if err != nil {
			returnCode = ExitGrammarError
			return wrapGrammarError(err)
		}
		patterns, err = loadTokenPatterns(tokensPath, g.TokenNames)
		if err != nil {
			returnCode = ExitConfigError
			return err
		}
	}

	gologger.Debug().Msgf("[%s] compiling %s as %s", runID, grammarPath, engineName)

	p, err := buildParser(kind, string(grammarSrc), patterns, cacheDir, runID)
	if err != nil {
		returnCode = ExitGrammarError
		return wrapGrammarError(err)
	}

	fmt.Print(p.Describe())
	gologger.Info().Msgf("[%s] %d tokens, %d nonterminals", runID, p.NumTokens(), p.NumNonterminals())

	if *flagInput == "" {
		return nil
	}
	if tokensPath == "" {
		returnCode = ExitConfigError
		return fmt.Errorf("-i/--input requires -t/--tokens")
	}

	input, err := os.ReadFile(*flagInput)
	if err != nil {
		returnCode = ExitConfigError
		return fmt.Errorf("reading input file: %w", err)
	}

	if err := drive(p, input, runID); err != nil {
		returnCode = ExitParseError
		return err
	}
	return nil
}

func buildParser(kind parsegen.EngineKind, grammarSrc string, patterns []parsegen.Pattern, cacheDir, runID string) (*parsegen.Parser, error) {
	if cacheDir == "" {
		return parsegen.Build(kind, grammarSrc, patterns)
	}
	return parsegen.BuildCached(kind, grammarSrc, patterns, cacheDir)
}

// drive runs input to completion through a fresh session, logging each
// reduction, and reports a syntax error as a word-wrapped diagnostic.
func drive(p *parsegen.Parser, input []byte, runID string) error {
	sess := p.NewSession()
	status := sess.Parse(input)
	for status == parsegen.Good {
		gologger.Debug().Msgf("[%s] reduce lhs=%d prod=%d", runID, sess.LHSNum(), sess.ProdNum())
		status = sess.Reduce(nil, false)
	}

	switch status {
	case parsegen.Done:
		gologger.Info().Msgf("[%s] input accepted", runID)
		return nil
	case parsegen.SyntaxError:
		msg := fmt.Sprintf(
			"syntax error at %d:%d: unexpected token %s, expected one of: %s",
			sess.Line(), sess.Column(), p.TokenName(sess.CurrentToken()), formatExpected(p, sess.ExpectedTokens()),
		)
		return fmt.Errorf("%s", rosed.Edit(msg).Wrap(80).String())
	default:
		return fmt.Errorf("unexpected parse status %v", status)
	}
}

// formatExpected renders the tokens that would have been accepted as an
// Oxford-comma list joined by "or", since they're alternatives rather than
// a set that all apply at once.
func formatExpected(p *parsegen.Parser, tokenIDs []int) string {
	names := make([]string, len(tokenIDs))
	for i, id := range tokenIDs {
		names[i] = p.TokenName(id)
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		names[len(names)-1] = "or " + names[len(names)-1]
		return strings.Join(names, ", ")
	}
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	return cfg, nil
}

// loadTokenPatterns reads path's [tokens.NAME] table and returns one Pattern
// per name in tokenNames, in that order, so pattern i always corresponds to
// the grammar's i-th declared token.
func loadTokenPatterns(path string, tokenNames []string) ([]parsegen.Pattern, error) {
	var tf tokenFile
	if _, err := toml.DecodeFile(path, &tf); err != nil {
		return nil, fmt.Errorf("reading tokens file: %w", err)
	}

	patterns := make([]parsegen.Pattern, len(tokenNames))
	for i, name := range tokenNames {
		entry, ok := tf.Tokens[name]
		if !ok {
			return nil, fmt.Errorf("tokens file has no pattern for declared token %q", name)
		}
		patterns[i] = parsegen.Pattern{Source: entry.Pattern, Newline: entry.Newline}
	}
	return patterns, nil
}

func parseEngineKind(name string) (parsegen.EngineKind, error) {
	switch strings.ToLower(name) {
	case "ll1":
		return parsegen.LL1, nil
	case "lr0":
		return parsegen.LR0, nil
	default:
		return 0, fmt.Errorf("unknown engine %q, must be \"ll1\" or \"lr0\"", name)
	}
}

func wrapGrammarError(err error) error {
	return fmt.Errorf("%s", rosed.Edit(err.Error()).Wrap(80).String())
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
