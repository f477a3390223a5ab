// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"os"
	"path/filepath"

	"github.com/stratastor/svcgate/pkg/clispec"
	"github.com/stratastor/svcgate/pkg/command"
	"github.com/stratastor/svcgate/pkg/errors"
)

// SpecConfig tells an Agent where to find a CLISpec document when the
// array itself doesn't answer catxmlspec: a directory of bundled XML
// documents and the file to use by default.
//
// The reference client additionally canonicalizes the array's reported
// firmware version (via lscluster/lsnode) to pick a version-specific
// bundled file. A single-family gateway deployment only ever talks to
// one array firmware line, so that extra indirection isn't wired here;
// BundleDir/DefaultFile covers it, and catxmlspec remains the primary,
// always-current path for any array that supports it.
type SpecConfig struct {
	BundleDir   string
	DefaultFile string
}

// ensureSpec resolves a.registry, fetching the array's own CLISpec
// document over SSH on first use and falling back to the bundled file
// named by a.specCfg if the array doesn't support catxmlspec.
func (a *Agent) ensureSpec(ctx context.Context) (*command.Registry, error) {
	a.specOnce.Lock()
	defer a.specOnce.Unlock()

	if a.registry != nil {
		return a.registry, nil
	}

	spec, err := a.fetchLiveSpec(ctx)
	if err != nil {
		spec, err = a.loadBundledSpec()
		if err != nil {
			return nil, errors.Wrap(err, errors.AgentSpecNotFound)
		}
	}

	a.registry = command.NewRegistry(spec)
	return a.registry, nil
}

// fetchLiveSpec asks the array itself for its CLISpec document via
// catxmlspec, a command every supported firmware family answers without
// needing a command.Registry (it takes no arguments and needs no
// escaping), and parses the result.
func (a *Agent) fetchLiveSpec(ctx context.Context) (*clispec.Spec, error) {
	sess, err := a.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer a.pool.Put(sess)

	stdout, _, err := sess.SendCommand(ctx, "catxmlspec")
	if err != nil {
		return nil, err
	}
	return clispec.ParseWithLogger([]byte(stdout), a.log)
}

func (a *Agent) loadBundledSpec() (*clispec.Spec, error) {
	file := a.specCfg.DefaultFile
	if file == "" {
		return nil, errors.New(errors.AgentSpecNotFound, "no bundled CLISpec file configured")
	}
	doc, err := os.ReadFile(filepath.Join(a.specCfg.BundleDir, file))
	if err != nil {
		return nil, errors.New(errors.AgentSpecNotFound, err.Error())
	}
	return clispec.ParseWithLogger(doc, a.log)
}
