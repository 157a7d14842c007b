package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
	nodeErr  error
)

// NewKSUID generates a new globally unique KSUID string. Used for request
// IDs and stored file names where a sortable opaque string is enough.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewID generates a 64-bit snowflake ID using the node ID from the
// SNOWFLAKE_NODE environment variable (defaults to node 1). The node is
// initialized once per process.
func NewID() (int64, error) {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if env := os.Getenv("SNOWFLAKE_NODE"); env != "" {
			if parsed, err := strconv.ParseInt(env, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		node, nodeErr = snowflake.NewNode(nodeID)
	})
	if nodeErr != nil {
		return 0, nodeErr
	}
	return node.Generate().Int64(), nil
}
