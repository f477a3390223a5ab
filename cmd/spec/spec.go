/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package spec implements the "spec" command tree: offline inspection of
// CLISpec documents, without needing a live array to talk to.
package spec

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratastor/svcgate/pkg/clispec"
)

func NewSpecCmd() *cobra.Command {
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Inspect CLISpec documents",
	}

	specCmd.AddCommand(newValidateCmd())
	specCmd.AddCommand(newListCmd())

	return specCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse a CLISpec XML document and report whether it's valid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := clispec.Parse(doc)
			if err != nil {
				return err
			}
			fmt.Printf("valid CLISpec document: arrayType=%s commands=%d\n", s.ArrayType, len(s.Commands))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <file>",
		Short: "List the commands a CLISpec document declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := clispec.Parse(doc)
			if err != nil {
				return err
			}
			for _, c := range s.Commands {
				fmt.Println(c.Name)
			}
			return nil
		},
	}
}
