// Command bufbench loads a file into a buffer.Tree, optionally replays a
// scripted batch of edits against it, and reports basic timing and memory
// statistics. It is the library's demo/benchmark driver.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/alexdima/edcore-sub000/bufcli"
	"github.com/alexdima/edcore-sub000/bufconfig"
	"github.com/alexdima/edcore-sub000/bufio16"
	"github.com/alexdima/edcore-sub000/buffer"
)

var (
	filePath   = flag.String("file", "", "path of the file to load")
	policyPath = flag.String("policy", "", "path of a leaf-sizing policy file (JSON or YAML)")
	scriptPath = flag.String("script", "", "path of an edit script to apply after loading")
	dump       = flag.Bool("dump", false, "print the first few lines of the resulting document")
	cpuprofile = flag.String("cpuprofile", "", "write a CPU profile to this file")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lmicroseconds)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			exitWithError(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			exitWithError(err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(); err != nil {
		exitWithError(err)
	}
}

func printUsage() {
	f := flag.CommandLine.Output()
	fmt.Fprintf(f, "Usage: %s -file <path> [options...]\n", os.Args[0])
	flag.PrintDefaults()
}

func run() error {
	if *filePath == "" {
		return fmt.Errorf("-file is required")
	}

	policy := buffer.DefaultPolicy()
	if *policyPath != "" {
		p, err := bufconfig.LoadPolicyFile(*policyPath)
		if err != nil {
			return err
		}
		policy = p
	}

	tree, err := loadTree(*filePath, policy)
	if err != nil {
		return err
	}
	log.Printf("loaded %s: length=%d lineCount=%d memoryUsage=%d bytes",
		*filePath, tree.Length(), tree.LineCount(), tree.MemoryUsage())

	if *scriptPath != "" {
		if err := applyScript(tree, *scriptPath); err != nil {
			return err
		}
		log.Printf("after script: length=%d lineCount=%d", tree.Length(), tree.LineCount())
	}

	if err := tree.AssertInvariants(); err != nil {
		return err
	}

	if *dump {
		printPreview(tree)
	}
	return nil
}

func loadTree(path string, policy buffer.Policy) (*buffer.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	start := time.Now()
	b := buffer.NewBuilder(policy, nil)
	err = bufio16.DecodeToChunks(f, bufio16.UTF8, 0, b.AcceptChunk)
	if err != nil {
		return nil, err
	}
	b.Finish()
	tree, err := b.Build()
	if err != nil {
		return nil, err
	}
	log.Printf("build took %s (avg chunk size %.1f code units)", time.Since(start), b.AverageChunkSize())
	return tree, nil
}

func applyScript(tree *buffer.Tree, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	edits, err := bufcli.ParseScript(f)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := tree.ReplaceOffsetLen(edits); err != nil {
		return err
	}
	log.Printf("applied %d edits in %s", len(edits), time.Since(start))
	return nil
}

func printPreview(tree *buffer.Tree) {
	const maxLines = 20
	const maxCells = 100

	lineCount := tree.LineCount()
	if lineCount > maxLines {
		lineCount = maxLines
	}

	for line := uint64(1); line <= lineCount; line++ {
		start, end, err := tree.FindLine(line)
		if err != nil {
			break
		}
		dest := make([]uint16, end.Offset-start.Offset)
		if err := tree.ExtractString(start, end.Offset-start.Offset, dest); err != nil {
			break
		}
		fmt.Println(bufcli.RenderLinePreview(dest, maxCells))
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	os.Exit(1)
}
