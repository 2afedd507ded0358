package domain

// LogFile is one discovered concordance log handed to a report module. The
// discovery layer has already read (and, for .gz files, decompressed) the
// content; parsers never touch the filesystem themselves.
type LogFile struct {
	// Path is the absolute path of the file on disk.
	Path string `json:"path"`

	// Filename is the base name of the file.
	Filename string `json:"filename"`

	// Root is the analysis directory the file was found under.
	Root string `json:"root"`

	// SampleName is derived from Filename with the matched search pattern's
	// suffix trimmed, e.g. "NA12878.error.spl.txt.gz" -> "NA12878".
	SampleName string `json:"sample_name"`

	// Content is the full decoded text of the file.
	Content string `json:"-"`
}

// DataSource records where one sample's data came from, for the sources
// listing written next to the report data files.
type DataSource struct {
	Module  string `json:"module"`
	Section string `json:"section"`
	Sample  string `json:"sample"`
	Path    string `json:"path"`
}
