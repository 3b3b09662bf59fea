/*
DESCRIPTION
  fast.go implements the "fast" comparison method: a perceptual hash of
  the reference and candidate luma planes compared by Hamming distance and
  scaled to a 0-100 difference score (0 meaning identical), in place of any
  of the metric package's windowed statistics. This trades accuracy for
  speed, skipping the per-pixel metric passes entirely.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package bisect

import "github.com/ausocean/recompress/pixel"

// totalHashBits is the number of bits produced by pixel.GenHash for an
// HashSide x HashSide thumbnail.
const totalHashBits = pixel.HashSide * pixel.HashSide

// FastScore hashes refY and candY's (width x height) luma planes and
// scales their Hamming distance to a 0-100 difference score: 0 for
// identical hashes, scaling up linearly to 100 at totalHashBits differing
// bits. This is the "fast" method's substitute for a metric.Compute call,
// matching the original jpeg-compare tool's hamming-to-percentage formula
// (a distance, not a similarity: lower means more alike).
func FastScore(refY, candY []byte, width, height int) int {
	refHash := pixel.GenHash(refY, width, height)
	candHash := pixel.GenHash(candY, width, height)
	dist := pixel.Hamming(refHash, candHash)

	return dist * 100 / totalHashBits
}

// fastUM rescales FastScore's 0-100 difference score onto the same [0,1]
// axis UM values for the metric-driven methods occupy (1 meaning
// identical), so Config.Target reads consistently regardless of which
// method the search uses.
func fastUM(refY, candY []byte, width, height int) float64 {
	return 1 - float64(FastScore(refY, candY, width, height))/100
}
