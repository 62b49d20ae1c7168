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

package analysis

import (
	"path/filepath"
	"testing"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
)

func TestLoadProgram(t *testing.T) {
	cfg := &packages.Config{
		Mode: PkgLoadMode,
		Dir:  filepath.Join("testdata", "src", "loadtest"),
	}
	loaded, err := LoadProgram(cfg, "", ssa.InstantiateGenerics, []string{"./..."})
	if err != nil {
		t.Fatalf("error loading packages: %s", err)
	}
	if len(loaded.Packages) != 1 || len(loaded.SSAPackages) != 1 {
		t.Fatalf("expected one package, got %d", len(loaded.Packages))
	}
	pkg := loaded.SSAPackages[0]
	if pkg.Pkg.Path() != "loadtest" {
		t.Errorf("unexpected package %s", pkg.Pkg.Path())
	}
	main := pkg.Func("main")
	if main == nil || len(main.Blocks) == 0 {
		t.Fatalf("main should be built")
	}
	if len(main.AnonFuncs) != 1 {
		t.Errorf("expected one closure in main, got %d", len(main.AnonFuncs))
	}
}

func TestLoadProgramNoPackages(t *testing.T) {
	cfg := &packages.Config{
		Mode: PkgLoadMode,
		Dir:  filepath.Join("testdata", "src", "loadtest"),
	}
	if _, err := LoadProgram(cfg, "", ssa.BuilderMode(0), []string{"./does/not/exist/..."}); err == nil {
		t.Errorf("expected an error when no package matches")
	}
}
