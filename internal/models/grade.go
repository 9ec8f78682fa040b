package models

// Grade is a letter band derived from a numeric mark.
type Grade string

// Grade bands, highest threshold first.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFor maps a mark to its letter band: 90 and above is an A, then bands
// of ten down to 60, everything below is an F. The function is total; it does
// not re-validate the [0, 100] range, so a computed average (possibly
// fractional) classifies the same way a raw mark does.
func GradeFor(mark float64) Grade {
	switch {
	case mark >= 90:
		return GradeA
	case mark >= 80:
		return GradeB
	case mark >= 70:
		return GradeC
	case mark >= 60:
		return GradeD
	default:
		return GradeF
	}
}
