package credential

import (
	"fmt"
	"math/rand"
)

// Simple, memorable words that read well on a projector screen.
var codeWords = []string{
	"tiger", "apple", "river", "cloud", "stone",
	"flame", "ocean", "piano", "robot", "honey",
	"grape", "lemon", "maple", "north", "solar",
	"storm", "zebra", "delta", "omega", "lunar",
	"coral", "frost", "bloom", "spark", "wave",
}

// Generate creates a memorable code in word-NN format (e.g., "tiger-42")
func Generate() string {
	word := codeWords[rand.Intn(len(codeWords))]
	num := rand.Intn(100)
	return fmt.Sprintf("%s-%02d", word, num)
}
