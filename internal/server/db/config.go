package db

type PutPolicy string

const (
	// PutPolicyReplace keeps at most one entry per ByUser key.
	PutPolicyReplace PutPolicy = "replace"
	// PutPolicyAppend prepends every submission, accumulating duplicates.
	PutPolicyAppend PutPolicy = "append"
)

type Config struct {
	PutPolicy PutPolicy `conf:"put_policy" yaml:"put_policy" json:"put_policy"`
}
