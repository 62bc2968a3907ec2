// Command sgc is the shadergraph pipeline tool.
//
// Usage:
//
//	sgc [options] <input.json>
//
// Examples:
//
//	sgc pipeline.json                    # Parse and validate
//	sgc -run pipeline.json               # Validate and execute on the CPU
//	sgc -run -verbose pipeline.json      # Execute with debug logging
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"github.com/gogpu/shadergraph"
)

var (
	run      = flag.Bool("run", false, "execute the entry point after validating")
	validate = flag.Bool("validate", true, "validate the document")
	width    = flag.Int("width", 640, "viewport width")
	height   = flag.Int("height", 480, "viewport height")
	verbose  = flag.Bool("verbose", false, "enable debug logging")
	version  = flag.Bool("version", false, "print version")
)

const sgcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("sgc version %s\n", sgcVersion)
		return
	}

	if *verbose {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	doc, err := shadergraph.Parse(data)
	if err != nil {
		color.Red("Parse error: %v", err)
		os.Exit(1)
	}

	if *validate {
		errs, err := shadergraph.Validate(doc)
		if err != nil {
			color.Red("Validation error: %v", err)
			os.Exit(1)
		}
		if len(errs) > 0 {
			fail := color.New(color.FgRed).SprintFunc()
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "%s %s\n", fail("error:"), e.Error())
			}
			fmt.Fprintf(os.Stderr, "%d validation error(s)\n", len(errs))
			os.Exit(1)
		}
		color.Green("%s: valid (%d functions, %d resources)", inputPath, len(doc.Functions), len(doc.Resources))
	}

	if !*run {
		return
	}

	opts := shadergraph.DefaultOptions()
	opts.ViewportWidth = *width
	opts.ViewportHeight = *height
	opts.Validate = false // already validated above

	ctx, err := shadergraph.RunWithOptions(doc, opts)
	if err != nil {
		color.Red("Runtime error: %v", err)
		os.Exit(1)
	}
	defer ctx.Destroy()

	color.Green("%s: entry point %q completed", inputPath, doc.EntryPoint)
	for i := range doc.Resources {
		def := &doc.Resources[i]
		if !def.Persistence.CPUAccess {
			continue
		}
		res, err := ctx.Resource(def.ID)
		if err != nil {
			continue
		}
		fmt.Printf("  %s: %dx%d, %d element(s)\n", def.ID, res.Width(), res.Height(), res.ElementCount())
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: sgc [options] <input.json>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  sgc pipeline.json               Parse and validate\n")
	fmt.Fprintf(os.Stderr, "  sgc -run pipeline.json          Validate and execute\n")
	fmt.Fprintf(os.Stderr, "  sgc -run -verbose pipeline.json Execute with debug logging\n")
}
