package order

import (
	"crypto/rand"
	"time"
)

const numberSuffixCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateOrderNumber produit un numéro lisible : horodatage + suffixe
// aléatoire court (ex: VL-20260901154210-K7Q2M). L'unicité est garantie par
// Store.ClaimOrderNumber, pas par le générateur lui-même.
func GenerateOrderNumber(now time.Time) string {
	suffix := make([]byte, 5)
	random := make([]byte, 5)
	if _, err := rand.Read(random); err != nil {
		// crypto/rand indisponible : on retombe sur les nanosecondes
		for i := range random {
			random[i] = byte(now.Nanosecond() >> (i * 8))
		}
	}
	for i, b := range random {
		suffix[i] = numberSuffixCharset[int(b)%len(numberSuffixCharset)]
	}
	return "VL-" + now.Format("20060102150405") + "-" + string(suffix)
}
