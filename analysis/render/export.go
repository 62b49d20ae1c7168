// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package render

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/awslabs/ar-go-dfg/analysis/config"
	"github.com/awslabs/ar-go-dfg/analysis/dataflow"
	"github.com/awslabs/ar-go-dfg/internal/formatutil"
)

// dotTimeout bounds the time spent rendering one graph with Graphviz
const dotTimeout = 10 * time.Second

// ExportOptions controls what ExportDir writes besides the dot files
type ExportOptions struct {
	// PNG renders every dot file to png with the Graphviz dot command, when it is installed
	PNG bool
}

// ExportDir writes one dot file per graph of results into dir. The directory is removed and created again first, so
// it only contains the graphs of this export. Files are named after the sanitized function id.
//
// The export stops at the first I/O error; the graphs themselves are never modified.
func ExportDir(results *dataflow.Results, dir string, opts ExportOptions, logger *config.LogGroup) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("could not clear directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	dotPath := ""
	if opts.PNG {
		p, err := exec.LookPath("dot")
		if err != nil {
			logger.Warnf("Graphviz dot command not found, graphs will not be rendered to png.")
		} else {
			dotPath = p
		}
	}

	used := map[string]int{}
	for _, id := range results.FuncIDs() {
		g, _ := results.GraphOf(id)
		base := formatutil.FileName(string(id))
		if n := used[base]; n > 0 {
			used[base] = n + 1
			base = fmt.Sprintf("%s_%d", base, n+1)
		} else {
			used[base] = 1
		}

		filename := filepath.Join(dir, base+".dot")
		if err := GraphToFile(g, filename); err != nil {
			return err
		}
		logger.Tracef("Wrote graph of %s to %s", id, filename)

		if dotPath != "" {
			if err := renderPNG(dotPath, filename); err != nil {
				return err
			}
		}
	}
	logger.Infof("Exported %d graphs to %s", results.Len(), dir)
	return nil
}

// GraphToFile writes the dot representation of g into filename
func GraphToFile(g *dataflow.Graph, filename string) error {
	b, err := MarshalDot(g)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

func renderPNG(dotPath string, dotFile string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dotTimeout)
	defer cancel()
	pngFile := dotFile[:len(dotFile)-len(filepath.Ext(dotFile))] + ".png"
	cmd := exec.CommandContext(ctx, dotPath, "-Tpng", dotFile, "-o", pngFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to render %s: %w (%s)", dotFile, err, out)
	}
	return nil
}

// Exporter returns the function the dataflow analyzer calls in debug mode. It exports to the export path of cfg,
// rendering png files when the config asks for it.
func Exporter(cfg *config.Config, logger *config.LogGroup) dataflow.Exporter {
	return func(results *dataflow.Results) error {
		return ExportDir(results, cfg.ExportPath(), ExportOptions{PNG: cfg.RenderPNG}, logger)
	}
}
