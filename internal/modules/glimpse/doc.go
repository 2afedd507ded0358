// Package glimpse parses GLIMPSE2_concordance output into report sections.
//
// The module consumes two log kinds:
//
//   - *.error.spl.txt(.gz): genotype concordance by sample. One data line
//     per sample and variant group; records merge across files keyed by the
//     line's sample-name column. Feeds the summary table, the accuracy
//     scatter plot and two general-stats columns.
//
//   - *.error.grp.txt(.gz): genotype concordance by allele frequency bin.
//     One file holds the bins of a single sample, keyed by the file's sample
//     name. Feeds the accuracy-by-frequency line graph drawn from the
//     combined SNPs+indels (GCsVAF) rows.
//
// Both formats share the same line discipline: a fixed literal header on
// the first non-empty line, then space-separated 19-token data lines with
// comment lines in between. Malformed lines degrade to logged warnings;
// only a wrong header rejects a whole file.
package glimpse
