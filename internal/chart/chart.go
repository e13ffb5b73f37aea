// Package chart renders demo histograms as SVG for chat display.
package chart

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

const (
	MinSamples     = 20
	MaxSamples     = 2000
	DefaultSamples = 200

	svgWidth   = 600
	svgHeight  = 400
	marginLeft = 40
	marginBot  = 30
	numBuckets = 24
)

// ClampSamples bounds a requested sample size to the supported range.
func ClampSamples(n int) int {
	if n < MinSamples {
		return MinSamples
	}
	if n > MaxSamples {
		return MaxSamples
	}
	return n
}

// Histogram renders a histogram of sampleSize standard-normal draws as
// SVG. The generator is seeded with the sample size so a given size
// always renders the same picture.
func Histogram(sampleSize int) []byte {
	sampleSize = ClampSamples(sampleSize)
	rng := rand.New(rand.NewSource(int64(sampleSize)))

	values := make([]float64, sampleSize)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range values {
		v := rng.NormFloat64()
		values[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	buckets := make([]int, numBuckets)
	bucketWidth := (hi - lo) / numBuckets
	maxCount := 1
	for _, v := range values {
		idx := int((v - lo) / bucketWidth)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		buckets[idx]++
		if buckets[idx] > maxCount {
			maxCount = buckets[idx]
		}
	}

	plotW := float64(svgWidth - marginLeft - 10)
	plotH := float64(svgHeight - marginBot - 30)
	barW := plotW / numBuckets

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="white"/>`, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<text x="%d" y="20" font-family="sans-serif" font-size="14">Demo distribution (n=%d)</text>`, marginLeft, sampleSize)
	for i, count := range buckets {
		h := plotH * float64(count) / float64(maxCount)
		x := float64(marginLeft) + float64(i)*barW
		y := 30 + plotH - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#2563eb" stroke="white"/>`, x, y, barW, h)
	}
	fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="black"/>`, marginLeft, 30+plotH, svgWidth-10, 30+plotH)
	b.WriteString(`</svg>`)
	return []byte(b.String())
}
