package morphology_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/internal/testutil"
	"github.com/MeKo-Tech/binmorph/morphology"
)

func TestScenarios(t *testing.T) {
	scenarios := testutil.LoadScenarios(t, "morphology/testdata/scenarios.yaml")
	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			in := testutil.FromRows(t, sc.Input)
			want := testutil.FromRows(t, sc.Want)
			out := binimg.Raw()

			var err error
			switch sc.Operation {
			case "dilation":
				err = morphology.BinaryDilation(in, out, sc.Connectivity, sc.Iterations, sc.EdgeCondition)
			case "erosion":
				err = morphology.BinaryErosion(in, out, sc.Connectivity, sc.Iterations, sc.EdgeCondition)
			case "propagation":
				seed := testutil.FromRows(t, sc.Seed)
				err = morphology.BinaryPropagation(seed, in, out, sc.Connectivity, sc.Iterations, sc.EdgeCondition)
			case "edgeobjectsremove":
				err = morphology.EdgeObjectsRemove(in, out, sc.Connectivity)
			case "fillholes":
				err = morphology.FillHoles(in, out, sc.Connectivity)
			default:
				t.Fatalf("unknown operation %q", sc.Operation)
			}
			require.NoError(t, err)
			testutil.RequireEqualImages(t, want, out)
		})
	}
}
