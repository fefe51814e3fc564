// Copyright 2026 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"slices"

	"github.com/prometheus-community/chef_textfile_reporter/registry"
	"github.com/prometheus-community/chef_textfile_reporter/snapshot"
)

const (
	namespace = "chef_client"

	environmentLabel = "chef_environment"
	roleLabel        = "role"
	tagLabel         = "tag"
	runlistLabel     = "runlist"
)

// Scrapers key on these names and label sets; do not change them.
var (
	durationOpts = registry.GaugeOpts{
		Name:       namespace + "_duration_ms",
		Help:       "duration of chef_client run in ms",
		LabelNames: []string{environmentLabel},
	}
	lastRunOpts = registry.GaugeOpts{
		Name:       namespace + "_last_run_timestamp_seconds",
		Help:       "time in epoch since the last chef_client run",
		LabelNames: []string{environmentLabel},
	}
	errorsOpts = registry.GaugeOpts{
		Name:       namespace + "_errors_count",
		Help:       "Total count of chef_client run errors",
		LabelNames: []string{environmentLabel},
	}
	resourcesOpts = registry.GaugeOpts{
		Name:       namespace + "_resources_count",
		Help:       "Total amount of resources",
		LabelNames: []string{environmentLabel},
	}
	updatedResourcesOpts = registry.GaugeOpts{
		Name:       namespace + "_updated_resources_count",
		Help:       "Total amount of resources updated in 1 chef_client run",
		LabelNames: []string{environmentLabel},
	}
	rolesOpts = registry.GaugeOpts{
		Name:       namespace + "_roles",
		Help:       "Chef Client Roles",
		LabelNames: []string{roleLabel, environmentLabel},
	}
	tagsOpts = registry.GaugeOpts{
		Name:       namespace + "_tags",
		Help:       "Chef Client Tags",
		LabelNames: []string{tagLabel, environmentLabel},
	}
	runlistOpts = registry.GaugeOpts{
		Name:       namespace + "_runlist",
		Help:       "Capture Chef Client runlist cookbooks and versions",
		LabelNames: []string{runlistLabel, environmentLabel},
	}
)

// cycle is the state of one report invocation.
type cycle struct {
	reg  *registry.Registry
	snap *snapshot.RunSnapshot
	env  string
}

// step populates part of the registry.
type step struct {
	name string
	desc string
	run  func(*cycle) error
}

// defaultSteps run in this order, which is also the order of the gauges in
// the written file.
var defaultSteps = []step{
	{name: "time", desc: "Getting Chef Client run metrics", run: collectTimeMetrics},
	{name: "roles", desc: "Capturing Chef node roles", run: collectNodeRoles},
	{name: "tags", desc: "Capturing Chef node tags", run: collectNodeTags},
	{name: "runlist", desc: "Capturing Chef node runlist", run: collectNodeRunlist},
	{name: "outcome", desc: "Getting Chef Client resource metrics", run: collectOutcomeMetrics},
}

// setOne registers opts and sets a single series labeled by the environment.
func (c *cycle) setOne(opts registry.GaugeOpts, v float64) error {
	g, err := c.reg.Register(opts)
	if err != nil {
		return err
	}
	return g.Set(v, c.env)
}

// setEach registers opts and sets one series with value 1 per item.
func (c *cycle) setEach(opts registry.GaugeOpts, items []string) error {
	g, err := c.reg.Register(opts)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := g.Set(1, item, c.env); err != nil {
			return err
		}
	}
	return nil
}

func collectTimeMetrics(c *cycle) error {
	elapsed, err := c.snap.ElapsedSeconds()
	if err != nil {
		return err
	}
	end, err := c.snap.EndTimestamp()
	if err != nil {
		return err
	}
	if err := c.setOne(durationOpts, elapsed*1e3); err != nil {
		return err
	}
	return c.setOne(lastRunOpts, float64(end))
}

// collectOutcomeMetrics emits either the error gauge or the resource gauges,
// never both.
func collectOutcomeMetrics(c *cycle) error {
	if !c.snap.Succeeded() {
		return c.setOne(errorsOpts, 1)
	}
	all, updated, err := c.snap.ResourceCounts()
	if err != nil {
		return err
	}
	if err := c.setOne(resourcesOpts, float64(all)); err != nil {
		return err
	}
	return c.setOne(updatedResourcesOpts, float64(updated))
}

func collectNodeRoles(c *cycle) error {
	return c.setEach(rolesOpts, sortedSet(c.snap.Roles))
}

func collectNodeTags(c *cycle) error {
	return c.setEach(tagsOpts, sortedSet(c.snap.Tags))
}

func collectNodeRunlist(c *cycle) error {
	entries := make([]string, 0, len(c.snap.RunList))
	for _, e := range c.snap.RunList {
		entries = append(entries, e.String())
	}
	return c.setEach(runlistOpts, entries)
}

// sortedSet returns the distinct items in lexical order.
func sortedSet(items []string) []string {
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}
