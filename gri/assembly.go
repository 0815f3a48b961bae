package gri

// Hardcoded contig sets for common assemblies, in conventional order so the
// rids PutAssemblySQL assigns from list position are stable.  Lengths are the canonical chromosome
// lengths of each assembly's primary contigs.
type contig struct {
	name   string
	length int64
}

var assemblies = map[string][]contig{
	"GRCh38_no_alt_analysis_set": {
		{"chr1", 248956422}, {"chr2", 242193529}, {"chr3", 198295559},
		{"chr4", 190214555}, {"chr5", 181538259}, {"chr6", 170805979},
		{"chr7", 159345973}, {"chr8", 145138636}, {"chr9", 138394717},
		{"chr10", 133797422}, {"chr11", 135086622}, {"chr12", 133275309},
		{"chr13", 114364328}, {"chr14", 107043718}, {"chr15", 101991189},
		{"chr16", 90338345}, {"chr17", 83257441}, {"chr18", 80373285},
		{"chr19", 58617616}, {"chr20", 64444167}, {"chr21", 46709983},
		{"chr22", 50818468}, {"chrX", 156040895}, {"chrY", 57227415},
		{"chrM", 16569},
	},
	"hs37d5": {
		{"1", 249250621}, {"2", 243199373}, {"3", 198022430},
		{"4", 191154276}, {"5", 180915260}, {"6", 171115067},
		{"7", 159138663}, {"8", 146364022}, {"9", 141213431},
		{"10", 135534747}, {"11", 135006516}, {"12", 133851895},
		{"13", 115169878}, {"14", 107349540}, {"15", 102531392},
		{"16", 90354753}, {"17", 81195210}, {"18", 78077248},
		{"19", 59128983}, {"20", 63025520}, {"21", 48129895},
		{"22", 51304566}, {"X", 155270560}, {"Y", 59373566},
		{"MT", 16569},
	},
}
