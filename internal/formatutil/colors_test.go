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

package formatutil

import "testing"

func TestFileName(t *testing.T) {
	for input, expected := range map[string]string{
		"main.main":                        "main.main",
		"(*example.com/pkg.T).Method":      "__example.com_pkg.T_.Method",
		"example.com/pkg.f$1":              "example.com_pkg.f_1",
		"..":                               "_",
		"":                                 "_",
		"pkg.naïve":                        "pkg.na_ve",
		"command-line-arguments.helper_fn": "command-line-arguments.helper_fn",
	} {
		if got := FileName(input); got != expected {
			t.Errorf("FileName(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestColorWithoutTerminal(t *testing.T) {
	defer func(f func() bool) { colorEnabled = f }(colorEnabled)
	colorEnabled = func() bool { return false }
	if s := Red("a", 1); s != "a1" {
		t.Errorf("Expected plain text, got %q", s)
	}
	colorEnabled = func() bool { return true }
	if s := Bold("x"); s != "\033[1mx\033[0m" {
		t.Errorf("Expected bold escape sequence, got %q", s)
	}
}

func TestSanitize(t *testing.T) {
	if s := Sanitize("a\nb\033"); s != `a\nb\x1b` {
		t.Errorf("Unexpected sanitized string %q", s)
	}
}
