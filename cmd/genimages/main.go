package main

import (
	"fmt"
	"os"

	"github.com/gracefulearth/imagevideo/multipage"
	flag "github.com/spf13/pflag"
)

// Writes the digit images 0.png to 9.png used to try out png2tiff.
func main() {
	dirArg := flag.StringP("dir", "d", ".", "directory to write the images to")
	flag.Parse()

	if err := os.MkdirAll(*dirArg, 0o755); err != nil {
		fmt.Printf("failed to create %s: %v\n", *dirArg, err)
		os.Exit(1)
	}
	files, err := multipage.GenerateDigits(*dirArg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d images to %s\n", len(files), *dirArg)
}
