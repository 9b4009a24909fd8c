package billing

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	smallNumbers = []string{
		"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tens   = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	scales = []string{"", "Thousand", "Million", "Billion", "Trillion", "Quadrillion", "Quintillion",
		"Sextillion", "Septillion", "Octillion", "Nonillion", "Decillion"}
)

// AmountInWords spells the integer part of amount in English, e.g.
// 175.99 -> "One Hundred Seventy Five Only".
func AmountInWords(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "Zero Only"
	}
	n := decimal.NewFromFloat(amount).Abs().BigInt()
	prefix := ""
	if amount <= -1 {
		prefix = "Minus "
	}
	return prefix + integerWords(n) + " Only"
}

var thousand = big.NewInt(1000)

// integerWords spells n in groups of three digits. Anything past the largest
// scale is spelled as a multiple of it.
func integerWords(n *big.Int) string {
	if n.Sign() == 0 {
		return smallNumbers[0]
	}
	rest := new(big.Int).Set(n)
	chunk := new(big.Int)
	parts := make([]string, 0, 8)
	for scale := 0; rest.Sign() > 0; scale++ {
		if scale == len(scales)-1 {
			parts = append([]string{integerWords(rest) + " " + scales[scale]}, parts...)
			break
		}
		rest.DivMod(rest, thousand, chunk)
		if chunk.Sign() == 0 {
			continue
		}
		words := chunkWords(int(chunk.Int64()))
		if scales[scale] != "" {
			words += " " + scales[scale]
		}
		parts = append([]string{words}, parts...)
	}
	return strings.Join(parts, " ")
}

func chunkWords(n int) string {
	words := make([]string, 0, 4)
	if n >= 100 {
		words = append(words, smallNumbers[n/100], "Hundred")
		n %= 100
	}
	if n >= 20 {
		words = append(words, tens[n/10])
		n %= 10
	}
	if n > 0 {
		words = append(words, smallNumbers[n])
	}
	return strings.Join(words, " ")
}
