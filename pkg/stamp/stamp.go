/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package stamp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// LastPage targets the last page of the document, whatever its length
const LastPage = -1

// DefaultFontSize of the stamp text in points
const DefaultFontSize = 8

// ErrStamping is returned for malformed documents and blocks targeting a page that does not exist
var ErrStamping = errors.New("stamping failed")

func init() {
	api.DisableConfigDir()
}

// Block is a bordered text overlay. Page is zero based, or LastPage. X and Y are the lower left origin in points.
type Block struct {
	Page  int
	X     float64
	Y     float64
	Lines []string
}

// Stamper renders blocks onto a document and returns the new document, the input is never modified
type Stamper interface {
	Stamp(ctx context.Context, document []byte, blocks []Block) ([]byte, error)
}

// Compiler check
var _ Stamper = (*PDFStamper)(nil)

// PDFStamper stamps PDF documents
type PDFStamper struct {
	FontName string
	FontSize int
}

// NewPDFStamper creates a PDFStamper using Helvetica in the given size
func NewPDFStamper(fontSize int) *PDFStamper {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	return &PDFStamper{FontName: "Helvetica", FontSize: fontSize}
}

// Stamp adds every block to its page. All blocks are rendered in one pass.
func (p *PDFStamper) Stamp(ctx context.Context, document []byte, blocks []Block) ([]byte, error) {
	if !bytes.HasPrefix(document, []byte("%PDF-")) {
		return nil, fmt.Errorf("%w: not a PDF document", ErrStamping)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageCount, err := api.PageCount(bytes.NewReader(document), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStamping, err)
	}

	watermarks := map[int][]*model.Watermark{}
	for i, block := range blocks {
		page, err := resolvePage(block.Page, pageCount)
		if err != nil {
			return nil, err
		}
		if len(block.Lines) == 0 {
			return nil, fmt.Errorf("%w: block %d has no lines", ErrStamping, i)
		}
		lines := make([]string, len(block.Lines))
		for j, line := range block.Lines {
			lines[j] = sanitize(line)
		}
		wm, err := api.TextWatermark(strings.Join(lines, "\n"), p.description(block), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrStamping, i, err)
		}
		watermarks[page] = append(watermarks[page], wm)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := api.AddWatermarksSliceMap(bytes.NewReader(document), &out, watermarks, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStamping, err)
	}
	return out.Bytes(), nil
}

func (p *PDFStamper) description(block Block) string {
	return fmt.Sprintf(
		"fontname:%s, points:%d, position:bl, offset:%s %s, scalefactor:1 abs, rotation:0, opacity:1, fillcolor:#000000, aligntext:left, margins:4, border:1",
		p.FontName, p.FontSize, formatPoints(block.X), formatPoints(block.Y),
	)
}

// resolvePage converts a zero based page index (or LastPage) to the one based page number of the document
func resolvePage(index, pageCount int) (int, error) {
	if index == LastPage {
		return pageCount, nil
	}
	if index < 0 || index >= pageCount {
		return 0, fmt.Errorf("%w: page index %d out of range, document has %d pages", ErrStamping, index, pageCount)
	}
	return index + 1, nil
}

func formatPoints(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
