// services/format.go
package services

import "fmt"

// percent renders completed/total as "NN.N%", with "0%" for an empty
// denominator.
func percent(completed, total int64) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(completed)/float64(total)*100)
}
