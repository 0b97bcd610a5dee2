package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gracefulearth/imagevideo/multipage"
	"github.com/gracefulearth/imagevideo/sink"
	flag "github.com/spf13/pflag"
)

func main() {
	outArg := flag.StringP("out", "o", "", "multipage TIFF to write")
	patternArg := flag.StringP("pattern", "p", "*.png", "glob of the images to assemble, sorted by name")
	dirArg := flag.StringP("dir", "d", "", "directory holding the images (default: directory of --out)")
	flag.Parse()

	if *outArg == "" {
		flag.Usage()
		os.Exit(2)
	}

	out, err := filepath.Abs(*outArg)
	if err != nil {
		fmt.Printf("invalid output path: %v\n", err)
		os.Exit(1)
	}
	if err := sink.CheckOutput(out, "", []string{".tif", ".tiff"}); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	dir := *dirArg
	if dir != "" {
		if dir, err = filepath.Abs(dir); err != nil {
			fmt.Printf("invalid input directory: %v\n", err)
			os.Exit(1)
		}
	}

	if err := multipage.Assemble(out, *patternArg, dir); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	pages, err := sink.ReadMultipage(out)
	if err != nil {
		fmt.Printf("failed to read back %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s with %d pages\n", out, len(pages))
}
