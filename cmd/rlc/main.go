// rlc - robot language compiler
//
// Usage: rlc [flags] file.rl
//
// Flags:
//
//	-o file        Write compiled WASM to file (default: a.wasm)
//	-dump-tokens   Print the token stream and exit without compiling
//	-dump-ast      Print the parsed AST and exit without compiling
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gmofishsauce/rlc/ast"
	"github.com/gmofishsauce/rlc/compiler"
	"github.com/gmofishsauce/rlc/lexer"
	"github.com/gmofishsauce/rlc/parser"
)

var logger = log.New(os.Stderr, "rlc: ", 0)

func main() {
	output := flag.String("o", "a.wasm", "output file")
	dumpTokens := flag.Bool("dump-tokens", false, "print the token stream and exit")
	dumpAST := flag.Bool("dump-ast", false, "print the parsed AST and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] file.rl\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	source := string(src)

	if *dumpTokens {
		for _, tok := range lexer.Lex(source) {
			fmt.Println(tok.String())
		}
		return
	}

	if *dumpAST {
		prog, diags := parser.Parse(lexer.Lex(source))
		for _, d := range diags.Items() {
			fmt.Fprintln(os.Stderr, d.String())
		}
		if prog != nil {
			fmt.Println(ast.Print(prog))
		}
		if diags.HasErrors() {
			os.Exit(1)
		}
		return
	}

	logger.Printf("compiling %s", path)
	result := compiler.Compile(source)
	for _, d := range result.Errors {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if !result.Success {
		logger.Printf("%d diagnostic(s), no output written", len(result.Errors))
		os.Exit(1)
	}

	if err := os.WriteFile(*output, result.Wasm, 0644); err != nil {
		logger.Fatalf("writing %s: %v", *output, err)
	}
	logger.Printf("wrote %s (%d bytes)", *output, len(result.Wasm))
}
