package morphology_test

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/binmorph/binimg"
	"github.com/MeKo-Tech/binmorph/morphology"
)

// randomBinary fills a 2D image of the given size with foreground at the
// given percentage, deterministically from seed.
func randomBinary(width, height int, density int, seed int64) *binimg.Image {
	im, err := binimg.New(binimg.Binary, width, height)
	if err != nil {
		panic(err)
	}
	rng := rand.New(rand.NewSource(seed))
	data := im.Samples()
	for i := range data {
		if rng.Intn(100) < density {
			data[i] = 1
		}
	}
	return im
}

func subset(a, b *binimg.Image) bool {
	ad, bd := a.Samples(), b.Samples()
	for i := range ad {
		if ad[i]&1 != 0 && bd[i]&1 == 0 {
			return false
		}
	}
	return true
}

// TestBinaryDilation_Extensive verifies the input is contained in its dilation.
func TestBinaryDilation_Extensive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("dilation only adds foreground, erosion only removes", prop.ForAll(
		func(width, height, connectivity, iterations int, seed int64) bool {
			in := randomBinary(width, height, 30, seed)
			dilated := binimg.Raw()
			if err := morphology.BinaryDilation(in, dilated, connectivity, iterations, "background"); err != nil {
				return false
			}
			eroded := binimg.Raw()
			if err := morphology.BinaryErosion(in, eroded, connectivity, iterations, "object"); err != nil {
				return false
			}
			return subset(in, dilated) && subset(eroded, in)
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(1, 2),
		gen.IntRange(1, 3),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestBinaryDilation_Duality verifies dilation is erosion of the complement.
func TestBinaryDilation_Duality(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("dilating equals eroding the complement", prop.ForAll(
		func(width, height, connectivity, iterations int, seed int64) bool {
			in := randomBinary(width, height, 40, seed)
			dilated := binimg.Raw()
			if err := morphology.BinaryDilation(in, dilated, connectivity, iterations, "background"); err != nil {
				return false
			}

			complement, err := binimg.New(binimg.Binary, in.Sizes()...)
			if err != nil {
				return false
			}
			if err := complement.CopyFrom(in); err != nil {
				return false
			}
			if err := complement.Invert(); err != nil {
				return false
			}
			eroded := binimg.Raw()
			if err := morphology.BinaryErosion(complement, eroded, connectivity, iterations, "object"); err != nil {
				return false
			}
			if err := eroded.Invert(); err != nil {
				return false
			}
			return dilated.Equal(eroded)
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(1, 2),
		gen.IntRange(1, 3),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestBinaryDilation_IterationsCompose verifies growing in steps matches one run.
func TestBinaryDilation_IterationsCompose(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("k+1 iterations equal one more step after k", prop.ForAll(
		func(width, height, connectivity, iterations int, seed int64) bool {
			in := randomBinary(width, height, 20, seed)
			atOnce := binimg.Raw()
			if err := morphology.BinaryDilation(in, atOnce, connectivity, iterations+1, "background"); err != nil {
				return false
			}
			stepped := binimg.Raw()
			if err := morphology.BinaryDilation(in, stepped, connectivity, iterations, "background"); err != nil {
				return false
			}
			if err := morphology.BinaryDilation(stepped, stepped, connectivity, 1, "background"); err != nil {
				return false
			}
			return atOnce.Equal(stepped)
		},
		gen.IntRange(4, 20),
		gen.IntRange(4, 20),
		gen.IntRange(1, 2),
		gen.IntRange(1, 3),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestBinaryOpening_Properties verifies opening and closing ordering and idempotence.
func TestBinaryOpening_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("opening is anti-extensive and idempotent, closing extensive and idempotent", prop.ForAll(
		func(width, height, connectivity int, seed int64) bool {
			in := randomBinary(width, height, 40, seed)

			opened := binimg.Raw()
			if err := morphology.BinaryOpening(in, opened, connectivity, 1, "background"); err != nil {
				return false
			}
			if !subset(opened, in) {
				return false
			}
			openedTwice := binimg.Raw()
			if err := morphology.BinaryOpening(opened, openedTwice, connectivity, 1, "background"); err != nil {
				return false
			}
			if !opened.Equal(openedTwice) {
				return false
			}

			closed := binimg.Raw()
			if err := morphology.BinaryClosing(in, closed, connectivity, 1, "background"); err != nil {
				return false
			}
			if !subset(in, closed) {
				return false
			}
			closedTwice := binimg.Raw()
			if err := morphology.BinaryClosing(closed, closedTwice, connectivity, 1, "background"); err != nil {
				return false
			}
			return closed.Equal(closedTwice)
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(1, 2),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestBinaryOpening_SpecialStaysInside verifies the special edge mode keeps
// the opening anti-extensive and the closing extensive.
func TestBinaryOpening_SpecialStaysInside(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("special edge handling preserves the ordering laws", prop.ForAll(
		func(width, height, connectivity, iterations int, seed int64) bool {
			in := randomBinary(width, height, 40, seed)
			opened := binimg.Raw()
			if err := morphology.BinaryOpening(in, opened, connectivity, iterations, "special"); err != nil {
				return false
			}
			closed := binimg.Raw()
			if err := morphology.BinaryClosing(in, closed, connectivity, iterations, "special"); err != nil {
				return false
			}
			return subset(opened, in) && subset(in, closed)
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(1, 2),
		gen.IntRange(1, 2),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestBinaryPropagation_Properties verifies the reconstruction laws.
func TestBinaryPropagation_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("propagation stays in the mask, covers the seed and is stable", prop.ForAll(
		func(width, height, connectivity int, maskSeed, seedSeed int64) bool {
			mask := randomBinary(width, height, 60, maskSeed)
			seed := randomBinary(width, height, 10, seedSeed)
			if err := seed.And(mask); err != nil {
				return false
			}

			out := binimg.Raw()
			if err := morphology.BinaryPropagation(seed, mask, out, connectivity, 0, "background"); err != nil {
				return false
			}
			if !subset(out, mask) || !subset(seed, out) {
				return false
			}

			// Propagating the result again changes nothing.
			again := binimg.Raw()
			if err := morphology.BinaryPropagation(out, mask, again, connectivity, 0, "background"); err != nil {
				return false
			}
			return out.Equal(again)
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(1, 2),
		gen.Int64(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestFillHoles_Properties verifies hole filling and edge object removal laws.
func TestFillHoles_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("filling holes only adds, removing edge objects only removes", prop.ForAll(
		func(width, height, connectivity int, seed int64) bool {
			in := randomBinary(width, height, 45, seed)

			filled := binimg.Raw()
			if err := morphology.FillHoles(in, filled, connectivity); err != nil {
				return false
			}
			if !subset(in, filled) {
				return false
			}
			filledTwice := binimg.Raw()
			if err := morphology.FillHoles(filled, filledTwice, connectivity); err != nil {
				return false
			}
			if !filled.Equal(filledTwice) {
				return false
			}

			pruned := binimg.Raw()
			if err := morphology.EdgeObjectsRemove(in, pruned, connectivity); err != nil {
				return false
			}
			if !subset(pruned, in) {
				return false
			}
			prunedTwice := binimg.Raw()
			if err := morphology.EdgeObjectsRemove(pruned, prunedTwice, connectivity); err != nil {
				return false
			}
			return pruned.Equal(prunedTwice)
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(1, 2),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// TestCountNeighbors_Consistency verifies the count against a direct tally.
func TestCountNeighbors_Consistency(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every foreground pixel counts itself plus its foreground neighbors", prop.ForAll(
		func(width, height, connectivity int, seed int64) bool {
			in := randomBinary(width, height, 50, seed)
			out := binimg.Raw()
			if err := morphology.CountNeighbors(in, out, connectivity, "foreground", "background"); err != nil {
				return false
			}
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					want := uint8(0)
					if in.Bit(x, y) {
						want = 1
						for dy := -1; dy <= 1; dy++ {
							for dx := -1; dx <= 1; dx++ {
								if dx == 0 && dy == 0 {
									continue
								}
								if connectivity == 1 && dx != 0 && dy != 0 {
									continue
								}
								nx, ny := x+dx, y+dy
								if nx < 0 || nx >= width || ny < 0 || ny >= height {
									continue
								}
								if in.Bit(nx, ny) {
									want++
								}
							}
						}
					}
					if out.At(x, y) != want {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(3, 16),
		gen.IntRange(3, 16),
		gen.IntRange(1, 2),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
