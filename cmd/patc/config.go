// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
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
	"os"

	"gopkg.in/yaml.v2"
)

// batchEntry is one pattern of a YAML batch file:
//
//	- name: ident
//	  regex: 'a(b|c)*d'
//	  options: "i;m"
type batchEntry struct {
	Name    string `yaml:"name"`
	Regex   string `yaml:"regex"`
	Options string `yaml:"options"`
}

func loadBatch(path string) ([]batchEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file %s: %w", path, err)
	}
	var entries []batchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing batch file %s: %w", path, err)
	}
	for i, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("%s: entry %d has no name", path, i)
		}
	}
	return entries, nil
}
