package strategy

import (
	"testing"

	"github.com/shuttlecourt/tournament-engine/domain"
	"github.com/stretchr/testify/require"
)

func TestForRejectsRandom(t *testing.T) {
	_, err := For(domain.MatchSystemRandom)
	require.Error(t, err)
}

func TestGroupConfigRoundTrip(t *testing.T) {
	raw := "Q;1;2;4;S;0;1;4;"
	cfg, err := ParseGroupConfig(raw)
	require.NoError(t, err)
	require.Len(t, cfg.Blocks, 2)
	require.Equal(t, raw, cfg.String())
	require.Equal(t, 12, cfg.TotalPairs())
}

func TestGroupConfigRejectsBadGrammar(t *testing.T) {
	_, err := ParseGroupConfig("Q;1;2")
	require.Error(t, err)
	_, err = ParseGroupConfig("XX;1;2;4;")
	require.Error(t, err)
}

func TestSwissPairRoundNeverRepeatsAnOpponent(t *testing.T) {
	standing := []int{0, 1, 2, 3}
	played := map[int]map[int]bool{
		0: {1: true},
		1: {0: true},
	}
	pairs := PairRound(standing, played, map[int]bool{})
	require.NotNil(t, pairs)
	for _, p := range pairs {
		if p[0] == 0 {
			require.NotEqual(t, 1, p[1])
		}
	}
}

func TestRoundRobinCanFreeze(t *testing.T) {
	rr := RoundRobin{}
	require.Error(t, rr.CanFreeze(2, false, domain.CategoryParams{}))
	require.NoError(t, rr.CanFreeze(3, false, domain.CategoryParams{}))
	require.Error(t, rr.CanFreeze(3, true, domain.CategoryParams{}))
}
