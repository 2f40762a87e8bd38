package cmd

import (
	"fmt"
	"io"

	"github.com/rm-hull/linear-filter/internal/kernel"
)

// ShowKernel validates the kernel file and prints its size, sum and weights.
func ShowKernel(path string, permissive bool, w io.Writer) error {
	var opts []kernel.LoadOption
	if permissive {
		opts = append(opts, kernel.Permissive())
	}
	k, err := kernel.LoadFile(path, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "# %dx%d kernel, sum %g\n%s\n", k.Size(), k.Size(), k.Sum(), k)
	return err
}
