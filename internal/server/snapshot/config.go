package snapshot

const (
	StorageFS     = "fs"
	StorageMemory = "memory"
	StorageS3     = "s3"
	StorageGCS    = "gcs"
	StorageWebDAV = "webdav"
)

type Config struct {
	Enabled bool `conf:"enabled" yaml:"enabled" json:"enabled"`

	// Cron schedules periodic saves, empty disables them.
	Cron string `conf:"cron" yaml:"cron" json:"cron"`

	// Retain is the number of snapshots kept after each save, 0 keeps all.
	Retain int    `conf:"retain" yaml:"retain" json:"retain"`
	Prefix string `conf:"prefix" yaml:"prefix" json:"prefix"`

	RestoreOnStart bool `conf:"restore_on_start" yaml:"restore_on_start" json:"restore_on_start"`
	SaveOnStop     bool `conf:"save_on_stop" yaml:"save_on_stop" json:"save_on_stop"`

	Storage StorageConfig `conf:"storage" yaml:"storage" json:"storage"`
}

type StorageConfig struct {
	Type      string       `conf:"type" yaml:"type" json:"type"`
	Directory string       `conf:"directory" yaml:"directory" json:"directory"`
	S3        S3Config     `conf:"s3" yaml:"s3" json:"s3"`
	GCS       GCSConfig    `conf:"gcs" yaml:"gcs" json:"gcs"`
	WebDAV    WebDAVConfig `conf:"webdav" yaml:"webdav" json:"webdav"`
}

type S3Config struct {
	BucketName string `conf:"bucket_name" yaml:"bucket_name" json:"bucket_name"`
	Endpoint   string `conf:"endpoint" yaml:"endpoint" json:"endpoint"`
	Region     string `conf:"region" yaml:"region" json:"region"`
	AccessKey  string `conf:"access_key" yaml:"access_key" json:"-"`
	SecretKey  string `conf:"secret_key" yaml:"secret_key" json:"-"`
}

type GCSConfig struct {
	BucketName string `conf:"bucket_name" yaml:"bucket_name" json:"bucket_name"`
	// Credential is the service account JSON.
	Credential string `conf:"credential" yaml:"credential" json:"-"`
}

type WebDAVConfig struct {
	URL             string `conf:"url" yaml:"url" json:"url"`
	Username        string `conf:"username" yaml:"username" json:"username"`
	Password        string `conf:"password" yaml:"password" json:"-"`
	Path            string `conf:"path" yaml:"path" json:"path"`
	InsecureSkipTLS bool   `conf:"insecure_skip_tls" yaml:"insecure_skip_tls" json:"insecure_skip_tls"`
}
