package config

// Version system:
// vMAJOR.MINOR.PATCH

// Centralized version control
const (
	// Executible
	Main_version = "v1.0.0"

	// Modular tools
	Benchmark       = "v1.1.0"
	Count_Peptides  = "v1.0.0"
	Nullomer_Motifs = "v1.0.0"
	Peptide_Motifs  = "v1.0.0"
	Sanity_check    = "v1.1.0"
)
