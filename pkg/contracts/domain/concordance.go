package domain

// SampleConcordance is the single source of truth for one per-sample genotype
// concordance record, parsed from a GLIMPSE2_concordance *.error.spl.txt data
// line. All exporters, plots and the general-stats table consume this struct.
//
// A data line carries 19 space-separated tokens: the group label, the bin id,
// the sample name (used as the map key, not stored here), then the 16 metric
// fields below in order. JSON tags keep the column names GLIMPSE itself writes
// so data exports line up with the tool's own headers.
type SampleConcordance struct {
	// Variants is the concordance group label: GCsS (SNPs), GCsI (indels)
	// or GCsV (SNPs + indels combined).
	Variants string `json:"variants"`

	// Bins is the bin group number within the section.
	Bins int `json:"bins"`

	// Genotype classification counts.
	ValGtRR    int `json:"val_gt_RR"`
	ValGtRA    int `json:"val_gt_RA"`
	ValGtAA    int `json:"val_gt_AA"`
	FilteredGP int `json:"filtered_gp"`

	// Match counts per genotype class.
	RRHomMatches int `json:"RR_hom_matches"`
	RAHetMatches int `json:"RA_het_matches"`
	AAHomMatches int `json:"AA_hom_matches"`

	// Mismatch counts per genotype class.
	RRHomMismatches int `json:"RR_hom_mismatches"`
	RAHetMismatches int `json:"RA_het_mismatches"`
	AAHomMismatches int `json:"AA_hom_mismatches"`

	// Mismatch rates in percent.
	RRHomMismatchesRatePercent float64 `json:"RR_hom_mismatches_rate_percent"`
	RAHetMismatchesRatePercent float64 `json:"RA_het_mismatches_rate_percent"`
	AAHomMismatchesRatePercent float64 `json:"AA_hom_mismatches_rate_percent"`

	// NonRefDiscordanceRatePercent is the non-reference discordance rate.
	// The column name typo ("discordanc") comes from GLIMPSE itself.
	NonRefDiscordanceRatePercent float64 `json:"non_reference_discordanc_rate_percent"`

	// Imputation accuracy measures.
	BestGTRsquared    float64 `json:"best_gt_rsquared"`
	ImputedDSRsquared float64 `json:"imputed_ds_rsquared"`
}

// SampleConcordanceColumns lists the stored columns of SampleConcordance in
// file order, using the upstream header names. Exporters use this as the
// header row and Fields() yields values in the same order.
var SampleConcordanceColumns = []string{
	"variants",
	"bins",
	"val_gt_RR",
	"val_gt_RA",
	"val_gt_AA",
	"filtered_gp",
	"RR_hom_matches",
	"RA_het_matches",
	"AA_hom_matches",
	"RR_hom_mismatches",
	"RA_het_mismatches",
	"AA_hom_mismatches",
	"RR_hom_mismatches_rate_percent",
	"RA_het_mismatches_rate_percent",
	"AA_hom_mismatches_rate_percent",
	"non_reference_discordanc_rate_percent",
	"best_gt_rsquared",
	"imputed_ds_rsquared",
}

// Fields returns the record's values in SampleConcordanceColumns order.
func (sc SampleConcordance) Fields() []any {
	return []any{
		sc.Variants,
		sc.Bins,
		sc.ValGtRR,
		sc.ValGtRA,
		sc.ValGtAA,
		sc.FilteredGP,
		sc.RRHomMatches,
		sc.RAHetMatches,
		sc.AAHomMatches,
		sc.RRHomMismatches,
		sc.RAHetMismatches,
		sc.AAHomMismatches,
		sc.RRHomMismatchesRatePercent,
		sc.RAHetMismatchesRatePercent,
		sc.AAHomMismatchesRatePercent,
		sc.NonRefDiscordanceRatePercent,
		sc.BestGTRsquared,
		sc.ImputedDSRsquared,
	}
}

// AccuracyMetric returns one of the six accuracy columns by upstream name.
// The accuracy scatter plot switches between these datasets.
func (sc SampleConcordance) AccuracyMetric(key string) (float64, bool) {
	switch key {
	case "RR_hom_mismatches_rate_percent":
		return sc.RRHomMismatchesRatePercent, true
	case "RA_het_mismatches_rate_percent":
		return sc.RAHetMismatchesRatePercent, true
	case "AA_hom_mismatches_rate_percent":
		return sc.AAHomMismatchesRatePercent, true
	case "non_reference_discordanc_rate_percent":
		return sc.NonRefDiscordanceRatePercent, true
	case "best_gt_rsquared":
		return sc.BestGTRsquared, true
	case "imputed_ds_rsquared":
		return sc.ImputedDSRsquared, true
	}
	return 0, false
}

// FrequencyBinConcordance is one per-allele-frequency-bin concordance record,
// parsed from a GLIMPSE2_concordance *.error.grp.txt data line. One file holds
// the bins for a single sample; records nest by group label and bin id.
type FrequencyBinConcordance struct {
	// Variants is the group label: GCsSAF, GCsIAF or GCsVAF.
	Variants string `json:"variants"`

	// IDN is the allele-frequency bin id, ascending with frequency.
	IDN int `json:"idn"`

	// NGenotypes is the number of genotypes that fell into the bin.
	NGenotypes int `json:"n_genotypes"`

	// MeanAF is the mean minor allele frequency of the bin.
	MeanAF float64 `json:"mean_af"`

	ValGtRR    int `json:"val_gt_RR"`
	ValGtRA    int `json:"val_gt_RA"`
	ValGtAA    int `json:"val_gt_AA"`
	FilteredGP int `json:"filtered_gp"`

	RRHomMatches int `json:"RR_hom_matches"`
	RAHetMatches int `json:"RA_het_matches"`
	AAHomMatches int `json:"AA_hom_matches"`

	RRHomMismatches int `json:"RR_hom_mismatches"`
	RAHetMismatches int `json:"RA_het_mismatches"`
	AAHomMismatches int `json:"AA_hom_mismatches"`

	RRHomMismatchesRatePercent float64 `json:"RR_hom_mismatches_rate_percent"`
	RAHetMismatchesRatePercent float64 `json:"RA_het_mismatches_rate_percent"`
	AAHomMismatchesRatePercent float64 `json:"AA_hom_mismatches_rate_percent"`

	BestGTRsquared    float64 `json:"best_gt_rsquared"`
	ImputedDSRsquared float64 `json:"imputed_ds_rsquared"`
}

// FrequencyBinConcordanceColumns lists the stored columns of
// FrequencyBinConcordance in file order, using the upstream header names.
var FrequencyBinConcordanceColumns = []string{
	"variants",
	"idn",
	"n_genotypes",
	"mean_af",
	"val_gt_RR",
	"val_gt_RA",
	"val_gt_AA",
	"filtered_gp",
	"RR_hom_matches",
	"RA_het_matches",
	"AA_hom_matches",
	"RR_hom_mismatches",
	"RA_het_mismatches",
	"AA_hom_mismatches",
	"RR_hom_mismatches_rate_percent",
	"RA_het_mismatches_rate_percent",
	"AA_hom_mismatches_rate_percent",
	"best_gt_rsquared",
	"imputed_ds_rsquared",
}

// Fields returns the record's values in FrequencyBinConcordanceColumns order.
func (fb FrequencyBinConcordance) Fields() []any {
	return []any{
		fb.Variants,
		fb.IDN,
		fb.NGenotypes,
		fb.MeanAF,
		fb.ValGtRR,
		fb.ValGtRA,
		fb.ValGtAA,
		fb.FilteredGP,
		fb.RRHomMatches,
		fb.RAHetMatches,
		fb.AAHomMatches,
		fb.RRHomMismatches,
		fb.RAHetMismatches,
		fb.AAHomMismatches,
		fb.RRHomMismatchesRatePercent,
		fb.RAHetMismatchesRatePercent,
		fb.AAHomMismatchesRatePercent,
		fb.BestGTRsquared,
		fb.ImputedDSRsquared,
	}
}

// ConcordanceBySample maps sample name to its per-sample concordance record,
// merged across every discovered file of a run.
type ConcordanceBySample map[string]SampleConcordance

// FrequencyBinsBySample maps sample name to group label to bin id to record.
// The outer key is the sample name derived from the source file, since one
// *.error.grp.txt file carries the bins of exactly one sample.
type FrequencyBinsBySample map[string]map[string]map[int]FrequencyBinConcordance
