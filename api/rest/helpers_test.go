package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/game/core"
	"github.com/kasuganosora/rpgcore/server/game/world"
	"github.com/kasuganosora/rpgcore/server/resource"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestWorld builds a 20x20 scene with the player at (1,1), an idle
// dummy at (3,1) and a guard far away in the corner.
func newTestWorld(t *testing.T) (*world.World, *resource.ResourceLoader) {
	t.Helper()
	res, err := resource.NewFromData(
		[]*resource.Weapon{
			{ID: "unarmed", Range: 1.5, Damage: 1, AttackCadence: 1, Hand: resource.HandRight},
			{ID: "sword", Range: 2, Damage: 10, AttackCadence: 1, Hand: resource.HandRight},
		},
		&resource.ProgressionData{Classes: []*resource.ProgressionClass{
			{Class: "hero", Stats: map[string][]float64{
				"health":                 {100, 120},
				"damage":                 {0, 0},
				"experience_to_level_up": {20},
				"experience_reward":      {10, 10},
			}},
			{Class: "grunt", Stats: map[string][]float64{
				"health":            {30},
				"damage":            {2},
				"experience_reward": {25},
			}},
		}},
		&resource.Scene{
			Grid: resource.Grid{Width: 20, Depth: 20},
			Actors: []*resource.ActorSpawn{
				{ID: "hero", Name: "Hero", Tag: world.PlayerTag, Class: "hero", Position: core.Vec3{X: 1, Z: 1}, Experience: true},
				{ID: "dummy", Name: "Dummy", Class: "grunt", Position: core.Vec3{X: 3, Z: 1}},
				{ID: "guard", Name: "Guard", Class: "grunt", Position: core.Vec3{X: 18, Z: 18}, AI: true},
			},
		},
	)
	require.NoError(t, err)
	w, err := world.New(res, world.DefaultConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	return w, res
}

func doJSON(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
