package domain

import (
	"fmt"
	"time"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

// scriptedRand replays fixed draws and then returns zero values.
type scriptedRand struct {
	floats []float64
	ints   []int
	intN   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	r.intN = append(r.intN, n)
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func images(urls ...string) []ImageDescriptor {
	out := make([]ImageDescriptor, 0, len(urls))
	for _, url := range urls {
		out = append(out, ImageDescriptor{URL: url})
	}
	return out
}

func numberedImages(n int) []ImageDescriptor {
	out := make([]ImageDescriptor, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ImageDescriptor{URL: fmt.Sprintf("https://img.example/%03d.jpg", i)})
	}
	return out
}

func urlsOf(pool []ImageDescriptor) []string {
	out := make([]string, 0, len(pool))
	for _, image := range pool {
		out = append(out, image.URL)
	}
	return out
}
