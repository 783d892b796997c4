package calendar

// Glyph is one event type drawn inside a calendar cell.
type Glyph struct {
	Path  string `json:"path"`
	Color string `json:"color"`
}

// DefaultGlyphs are the four event glyphs: two lettered word marks and two
// line-art marks.
var DefaultGlyphs = []Glyph{
	{
		Color: "#c4332b",
		Path:  "M101.02123,145.8035 h-1.925469 v5.96243 h-0.781347 v-5.96243 h-1.920813 v-0.70693 h4.627629 z m4.58111,5.96243 h-3.53467 v-6.66936 h3.38584 v0.70693 h-2.60449 v2.21847 h2.40916 v0.70229 h-2.40916 v2.33474 h2.75332 z m8.08323,0 h-0.7767 v-4.47415 q0,-0.5302 0.0651,-1.29759 h-0.0186 q-0.11162,0.45113 -0.19999,0.64647 l-2.27893,5.12527 h-0.38137 l-2.27428,-5.08806 q-0.0977,-0.22324 -0.19999,-0.68368 h-0.0186 q0.0372,0.39997 0.0372,1.3069 v4.46484 h-0.75345 v-6.66936 h1.0325 l2.04639,4.65088 q0.23719,0.53485 0.30695,0.79995 h0.0279 q0.19999,-0.5488 0.32091,-0.81856 l2.08824,-4.63227 h0.97669 z",
	},
	{
		Color: "#16B644",
		Path:  "M75.918383,146.25982 v-0.92087 q0.15813,0.13952 0.376721,0.25114 0.223242,0.11163 0.465088,0.19069 0.246496,0.0744 0.492993,0.11627 0.246496,0.0419 0.455786,0.0419 0.720886,0 1.074353,-0.2651 0.358118,-0.26975 0.358118,-0.77205 0,-0.26975 -0.120923,-0.46973 -0.116272,-0.19999 -0.325562,-0.36277 -0.209289,-0.16743 -0.497644,-0.31626 -0.283703,-0.15348 -0.613916,-0.32091 -0.348816,-0.17674 -0.651123,-0.35812 -0.302307,-0.18139 -0.525549,-0.39998 -0.223242,-0.21859 -0.353467,-0.49299 -0.125574,-0.27905 -0.125574,-0.65112 0,-0.45579 0.199988,-0.79065 0.199988,-0.33952 0.525549,-0.55811 0.325562,-0.21859 0.73949,-0.32556 0.418579,-0.10697 0.851111,-0.10697 0.985986,0 1.437122,0.2372 v0.87901 q-0.590662,-0.40928 -1.516187,-0.40928 -0.255798,0 -0.511597,0.0558 -0.255798,0.0512 -0.455786,0.17209 -0.199988,0.12092 -0.325561,0.31161 -0.125574,0.19068 -0.125574,0.46508 0,0.2558 0.09302,0.44184 0.09767,0.18603 0.283703,0.33951 0.186035,0.15348 0.451135,0.29766 0.269751,0.14417 0.618567,0.31626 0.358118,0.17673 0.679029,0.37207 0.32091,0.19533 0.562756,0.43253 0.241846,0.23719 0.381372,0.52555 0.144177,0.28835 0.144177,0.66042 0,0.493 -0.195337,0.83716 -0.190686,0.33952 -0.520898,0.55346 -0.325562,0.21394 -0.753442,0.30695 -0.427881,0.0977 -0.902271,0.0977 -0.15813,0 -0.390674,-0.0279 -0.232544,-0.0233 -0.474389,-0.0744 -0.241846,-0.0465 -0.460437,-0.11627 -0.213941,-0.0744 -0.344165,-0.16278 z M86.452623,146.52957 h-0.865064 l-0.706933,-1.86965 h-2.827735 l-0.665075,1.86965 h-0.869714 l2.557983,-6.66936 h0.809253 z M84.624827,143.95764 l-1.046447,-2.84169 q-0.05116,-0.13953 -0.10232,-0.44649 h-0.0186 q-0.04651,0.28371 -0.10697,0.44649 l-1.037146,2.84169 z M94.233542,146.52957 h-0.776696 v-4.47414 q0,-0.5302 0.06511,-1.2976 h-0.0186 q-0.111621,0.45114 -0.199987,0.64647 l-2.278931,5.12527 h-0.381372 l-2.27428,-5.08806 q-0.09767,-0.22324 -0.199988,-0.68368 h-0.0186 q0.03721,0.39998 0.03721,1.3069 v4.46484 h-0.753442 v-6.66936 h1.032495 l2.046386,4.65088 q0.237195,0.53485 0.306958,0.79995 h0.02791 q0.199987,-0.5488 0.32091,-0.81855 l2.088245,-4.63228 h0.976684 z",
	},
	{
		Color: "#6862FD",
		Path:  "M0.0,0.0 H12.5 M6.25,0.0 V12.5 M15.0,0.0 V12.5 M15.0,0.0 H27.5 M15.0,6.25 H27.5 M15.0,12.5 H27.5 M30.0,12.5 V0.0 M30.0,0.0 L36.25,6.25 M36.25,6.25 L42.5,0.0 M42.5,0.0 V12.5",
	},
	{
		Color: "#FDC763",
		Path:  "M0.0,0.0 H25.0 C37.5,0.0 37.5,12.5 25.0,12.5 C12.5,12.5 12.5,25.0 25.0,25.0 H0.0 M30.0,0.0 V25.0 M30.0,0.0 L45.0,12.5 L30.0,25.0 M35.0,12.5 H40.0 M50.0,0.0 V25.0 M50.0,0.0 L62.5,12.5 L75.0,0.0 V25.0",
	},
}
