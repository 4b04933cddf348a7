// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"os"

	"code.vegaprotocol.io/dustflow/core/processor"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	purple = color.New(color.FgMagenta).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type printer struct {
	w io.Writer
}

// newPrinter writes to f, colors are only used on a terminal.
func newPrinter(f *os.File) *printer {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		color.NoColor = true
	}
	return &printer{w: f}
}

func (p *printer) title(s string) {
	fmt.Fprintf(p.w, "%v\n", bold(s))
}

// receipt prints the outcome of a transaction.
func (p *printer) receipt(step string, r *processor.Receipt, err error) {
	status := green("OK")
	if err != nil {
		status = red("REVERTED")
	}
	fmt.Fprintf(p.w, "%v: %v\n", step, status)
	if r != nil {
		p.field("tx", r.TxID)
		if r.Result != nil {
			p.field("result", r.Result)
		}
	}
	if err != nil {
		p.field(red("error"), err)
	}
}

func (p *printer) field(k string, v interface{}) {
	fmt.Fprintf(p.w, "  %v: %v\n", purple(k), v)
}
