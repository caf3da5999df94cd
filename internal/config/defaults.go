package config

const (
	defaultLogDir          = "~/.local/share/landscaper/logs"
	defaultStateDir        = "~/.local/share/landscaper"
	defaultJournalFile     = "journal.db"
	defaultMontageSuffix   = "_montage"
	defaultOutputFormat    = "png"
	defaultDisposition     = DispositionNone
	defaultArchiveBinary   = "7z"
	defaultArchiveExt      = "7z"
	defaultArchiveDirName  = "premontage"
	defaultMagickBinary    = "magick"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	archivePasswordEnvName = "LANDSCAPER_ARCHIVE_PASSWORD"
)

// Disposition values accepted by montage.disposition.
const (
	DispositionNone    = "none"
	DispositionDelete  = "delete"
	DispositionArchive = "archive"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Images: Images{
			Extensions:    []string{"png", "jpg"},
			OutputFormats: []string{"png", "jpg"},
			MontageSuffix: defaultMontageSuffix,
		},
		Montage: Montage{
			OutputFormat: defaultOutputFormat,
			Disposition:  defaultDisposition,
			Recursive:    true,
		},
		Archive: Archive{
			Binary:      defaultArchiveBinary,
			Extension:   defaultArchiveExt,
			DirName:     defaultArchiveDirName,
			UsePassword: true,
		},
		ImageMagick: ImageMagick{
			Binary: defaultMagickBinary,
		},
		Journal: Journal{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
