package main

import (
	"fmt"
	"os"

	"github.com/gracefulearth/imagevideo/multipage"
	flag "github.com/spf13/pflag"
)

// Joins time series stills named <stem>_t<N><ext> into one multipage TIFF
// per stem.
func main() {
	dirArg := flag.StringP("dir", "d", ".", "directory holding the series")
	extArg := flag.StringP("ext", "e", ".png", "suffix of the series images")
	flag.Parse()

	outputs, err := multipage.AssembleSeries(*dirArg, *extArg)
	for _, out := range outputs {
		fmt.Println("wrote", out)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
