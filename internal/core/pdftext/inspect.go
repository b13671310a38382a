package pdftext

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// keep pdfcpu from writing a config dir under the user's home
	model.ConfigPath = "disable"
}

// Info is a structural summary of a PDF.
type Info struct {
	Bytes   int
	Pages   int
	Valid   bool
	Problem string // validation message when !Valid
}

// Inspect validates the PDF structure with pdfcpu and counts its pages.
// A document that pdfcpu cannot read at all is reported as ErrDocumentUnreadable;
// a document that only fails validation still gets a page count.
func Inspect(data []byte) (Info, error) {
	info := Info{Bytes: len(data)}

	if err := api.Validate(bytes.NewReader(data), model.NewDefaultConfiguration()); err != nil {
		info.Problem = err.Error()
	} else {
		info.Valid = true
	}

	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return info, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}
	info.Pages = n
	return info, nil
}
