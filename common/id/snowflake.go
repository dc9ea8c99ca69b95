// Package id issues time-ordered snowflake IDs for sessions and plan
// evaluations.
package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID. Only the first
// call has any effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns the next ID. Init must have succeeded first.
func New() int64 {
	return node.Generate().Int64()
}

// Parse reads an ID as rendered in URLs and JSON ("1790437653459423232").
func Parse(s string) (int64, error) {
	sf, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if sf.Int64() <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return sf.Int64(), nil
}
