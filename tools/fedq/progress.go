// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/cheggaaa/pb"
	"github.com/ebay/federation/sources/memstore"
)

// progressBars returns a LoadMonitor that draws a progress bar on 'out' for
// each data file as it loads.
func progressBars(out io.Writer) memstore.LoadMonitor {
	return func(filename string, size int64, r io.Reader) (io.Reader, func()) {
		bar := pb.New64(size).
			Prefix(fmt.Sprintf("Loading %s ", filepath.Base(filename))).
			SetUnits(pb.U_BYTES)
		bar.SetMaxWidth(100)
		bar.Output = out
		bar.ShowPercent = true
		bar.Start()
		return bar.NewProxyReader(r), bar.Finish
	}
}
