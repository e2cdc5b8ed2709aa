package filters

import "fmt"

// DaysPerMonth is the average month length used for tenure.
const DaysPerMonth = 30.44

// TenureSQL is round((end - start) / 30.44) in whole months, NULL when either side is NULL.
func TenureSQL(start, end string) string {
	return fmt.Sprintf("CAST(ROUND((JULIANDAY(%s) - JULIANDAY(%s)) / %.2f) AS INTEGER)", end, start, DaysPerMonth)
}

// TenureDaysSQL is the whole-day difference between end and start.
func TenureDaysSQL(start, end string) string {
	return fmt.Sprintf("CAST(JULIANDAY(%s) - JULIANDAY(%s) AS INTEGER)", end, start)
}
