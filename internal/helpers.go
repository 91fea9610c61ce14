package internal

// PanicOnError panics if given non-nil error.
// Reserved for failures that mean a corrupt assembly image or a programming error,
// such as a table record index the table itself reported as in range.
func PanicOnError(err error) {
	if err != nil {
		panic(err)
	}
}
