package main

import (
	"sort"

	"github.com/czerwonk/pinggraph/config"
	log "github.com/sirupsen/logrus"
)

// customLabelSet collects the label names used by any server. Servers
// without a label get an empty value.
type customLabelSet struct {
	names   []string
	nameMap map[string]struct{}
}

func newCustomLabelSet(servers []config.ServerConfig) *customLabelSet {
	cl := &customLabelSet{
		nameMap: make(map[string]struct{}),
		names:   make([]string, 0),
	}

	for _, s := range servers {
		cl.addLabelsForServer(s)
	}

	return cl
}

func (cl *customLabelSet) addLabelsForServer(s config.ServerConfig) {
	names := make([]string, 0, len(s.Labels))
	for name := range s.Labels {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if isReservedLabel(name) {
			log.Warnf("ignoring label %q of server %s, the name is reserved", name, s.Address)
			continue
		}
		cl.addLabel(name)
	}
}

func isReservedLabel(name string) bool {
	for _, l := range labelNames {
		if l == name {
			return true
		}
	}
	return false
}

func (cl *customLabelSet) addLabel(name string) {
	if _, exists := cl.nameMap[name]; exists {
		return
	}

	cl.names = append(cl.names, name)
	cl.nameMap[name] = struct{}{}
}

func (cl *customLabelSet) labelNames() []string {
	return cl.names
}

func (cl *customLabelSet) labelValues(s config.ServerConfig) []string {
	values := make([]string, len(cl.names))
	if s.Labels == nil {
		return values
	}

	for i, name := range cl.names {
		if value, isSet := s.Labels[name]; isSet {
			values[i] = value
		}
	}

	return values
}
