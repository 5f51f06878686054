package domain

import (
	"math"
	"time"
)

const millisecondsPerHour = 3600000

// BucketIndex is floor(now_ms / (hours * 1h)).
func BucketIndex(now time.Time, rotationIntervalHours float64) int64 {
	width := rotationIntervalHours * millisecondsPerHour
	if width <= 0 {
		return 0
	}
	return int64(math.Floor(float64(now.UnixMilli()) / width))
}

// BucketEnd is the instant at which bucket gives way to the next one.
func BucketEnd(bucket int64, rotationIntervalHours float64) time.Time {
	width := rotationIntervalHours * millisecondsPerHour
	return time.UnixMilli(int64(math.Round(float64(bucket+1) * width))).UTC()
}

// PoolWindow describes which slice of the seeded permutation is active.
// Cycle counts complete passes over all windows; it seeds the permutation so
// that every pass surfaces the whole collection exactly once.
type PoolWindow struct {
	Bucket       int64
	Cycle        int64
	ActiveBucket int
	TotalBuckets int
	Start        int
	End          int
}

func NewPoolWindow(collectionSize, poolSize int, bucket int64) PoolWindow {
	if collectionSize <= 0 || poolSize <= 0 {
		return PoolWindow{Bucket: bucket}
	}

	total := (collectionSize + poolSize - 1) / poolSize
	cycle, active := floorDivMod(bucket, int64(total))
	start := int(active) * poolSize

	return PoolWindow{
		Bucket:       bucket,
		Cycle:        cycle,
		ActiveBucket: int(active),
		TotalBuckets: total,
		Start:        start,
		End:          min(start+poolSize, collectionSize),
	}
}

// RotatingPool derives the active subset of collection for the bucket that
// contains now. With rotation disabled it returns a fresh uniform shuffle of
// the collection truncated to the pool size.
func RotatingPool(collection []ImageDescriptor, now time.Time, cfg Config, rng RandomSource) ([]ImageDescriptor, PoolWindow) {
	if len(collection) == 0 {
		return nil, PoolWindow{}
	}

	if !cfg.RotatingPools {
		shuffled := Shuffle(collection, rng)
		end := min(cfg.PoolSize, len(shuffled))
		return shuffled[:end], PoolWindow{TotalBuckets: 1, End: end}
	}

	bucket := BucketIndex(now, cfg.PoolRotationInterval)
	window := NewPoolWindow(len(collection), cfg.PoolSize, bucket)
	permuted := SeededShuffle(collection, window.Cycle)

	return permuted[window.Start:window.End], window
}

// SeededShuffle returns a permutation of images that depends only on seed.
func SeededShuffle(images []ImageDescriptor, seed int64) []ImageDescriptor {
	source := make([]ImageDescriptor, len(images))
	copy(source, images)
	result := make([]ImageDescriptor, 0, len(images))

	for i := len(source); i > 0; i-- {
		seed = lcgNext(seed)
		j := int(math.Floor(seededFraction(seed) * float64(i)))
		result = append(result, source[j])
		source[j] = source[i-1]
	}

	return result
}

func Shuffle(images []ImageDescriptor, rng RandomSource) []ImageDescriptor {
	source := make([]ImageDescriptor, len(images))
	copy(source, images)
	result := make([]ImageDescriptor, 0, len(images))

	for i := len(source); i > 0; i-- {
		j := rng.IntN(i)
		result = append(result, source[j])
		source[j] = source[i-1]
	}

	return result
}

func floorDivMod(a, b int64) (int64, int64) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

func lcgNext(seed int64) int64 {
	next := (seed*9301 + 49297) % 233280
	if next < 0 {
		next += 233280
	}
	return next
}

// seededFraction maps seed into [0, 1).
func seededFraction(seed int64) float64 {
	x := math.Sin(float64(seed)) * 10000
	return x - math.Floor(x)
}
