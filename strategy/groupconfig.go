package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shuttlecourt/tournament-engine/errs"
)

// StartLevel names the first knock-out round a GroupsThenKO category
// enters once its group phase finishes.
type StartLevel string

const (
	StartL16 StartLevel = "L16"
	StartQ   StartLevel = "Q"
	StartS   StartLevel = "S"
)

// GroupBlock is one repeated "<start-level>;<second-survives 0/1>;
// <#groups>;<group-size>;" block of a GroupConfig string.
type GroupBlock struct {
	Start          StartLevel
	SecondSurvives bool
	Groups         int
	GroupSize      int
}

// GroupConfig is the parsed form of a category's GroupConfig parameter:
// one or more group blocks, each feeding a different knock-out entry
// point (a category can run, e.g., a group of 16 with second-place
// seeding quarterfinals alongside a smaller group feeding round of 16).
type GroupConfig struct {
	Blocks []GroupBlock
}

// ParseGroupConfig parses the semicolon-delimited wire format. Empty
// input is legal and yields a zero-block GroupConfig.
func ParseGroupConfig(s string) (*GroupConfig, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return &GroupConfig{}, nil
	}
	fields := strings.Split(s, ";")
	// trailing ";" produces one empty trailing field; drop it.
	if len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields)%4 != 0 {
		return nil, errs.ErrInvalidKoConfig
	}

	cfg := &GroupConfig{}
	for i := 0; i < len(fields); i += 4 {
		start := StartLevel(fields[i])
		if start != StartL16 && start != StartQ && start != StartS {
			return nil, errs.ErrInvalidKoConfig
		}
		secondSurvives, err := strconv.Atoi(fields[i+1])
		if err != nil || (secondSurvives != 0 && secondSurvives != 1) {
			return nil, errs.ErrInvalidKoConfig
		}
		groups, err := strconv.Atoi(fields[i+2])
		if err != nil || groups < 1 {
			return nil, errs.ErrInvalidKoConfig
		}
		groupSize, err := strconv.Atoi(fields[i+3])
		if err != nil || groupSize < 2 {
			return nil, errs.ErrInvalidKoConfig
		}
		cfg.Blocks = append(cfg.Blocks, GroupBlock{
			Start:          start,
			SecondSurvives: secondSurvives == 1,
			Groups:         groups,
			GroupSize:      groupSize,
		})
	}
	return cfg, nil
}

// String renders a GroupConfig back to its wire format; ParseGroupConfig
// applied to the result reproduces an equivalent GroupConfig.
func (c *GroupConfig) String() string {
	var b strings.Builder
	for _, blk := range c.Blocks {
		second := 0
		if blk.SecondSurvives {
			second = 1
		}
		fmt.Fprintf(&b, "%s;%d;%d;%d;", blk.Start, second, blk.Groups, blk.GroupSize)
	}
	return b.String()
}

// TotalPairs is the number of pairs a GroupConfig's group phase expects.
func (c *GroupConfig) TotalPairs() int {
	total := 0
	for _, blk := range c.Blocks {
		total += blk.Groups * blk.GroupSize
	}
	return total
}

// PoolSizes flattens the blocks into one expected size per pool, in the
// order pool numbers 1..N are assigned: block order, then Groups pools
// of GroupSize each within a block.
func (c *GroupConfig) PoolSizes() []int {
	var sizes []int
	for _, blk := range c.Blocks {
		for i := 0; i < blk.Groups; i++ {
			sizes = append(sizes, blk.GroupSize)
		}
	}
	return sizes
}

// BlockFor returns the GroupBlock a 1-based pool number belongs to.
func (c *GroupConfig) BlockFor(poolNum int) (GroupBlock, bool) {
	seen := 0
	for _, blk := range c.Blocks {
		if poolNum > seen && poolNum <= seen+blk.Groups {
			return blk, true
		}
		seen += blk.Groups
	}
	return GroupBlock{}, false
}
