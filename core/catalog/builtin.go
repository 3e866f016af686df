package catalog

// Display names of the built-in dynamic reports.
const (
	ReportReachAnalysis    = "Reach Analysis"
	ReportOptimalFrequency = "Optimal Frequency"
	ReportOverlapAnalysis  = "Overlap Analysis"
	ReportPathAnalysis     = "Path Analysis"
)

// Query parameter names shared by every dynamic report.
const (
	ParamActivityIDs = "activity_ids"
	ParamPathLength  = "path_length"
)

// BuiltinReports returns freshly resolved copies of the built-in reports.
func BuiltinReports() []*ReportConfig {
	return []*ReportConfig{
		DefaultDynamicReport(ReportReachAnalysis, QueryKindFrequencyDistribution),
		DefaultDynamicReport(ReportOptimalFrequency, QueryKindOptimalFrequency),
		DefaultDynamicReport(ReportOverlapAnalysis, QueryKindOverlap),
		AttributionDynamicReport(ReportPathAnalysis),
	}
}

// DefaultDynamicReport is the configuration shared by reach, frequency and
// overlap reports.
func DefaultDynamicReport(name string, kind QueryKind) *ReportConfig {
	cfg := &ReportConfig{
		Name: name,
		Kind: kind,
		ReportParams: []ReportParam{
			{
				DisplayName:    "Activity IDs (applies to Optimal analysis)",
				ParamType:      ParamTypeFreeText,
				ValueType:      ValueTypeArrayOfNumbers,
				DefaultValue:   "0,0",
				QueryParamName: ParamActivityIDs,
			},
			{
				DisplayName:    "Path length (applies to Attr. analysis)",
				ParamType:      ParamTypeFreeText,
				ValueType:      ValueTypeNumber,
				DefaultValue:   "0",
				QueryParamName: ParamPathLength,
			},
		},
		GroupingParams: FilterParams{
			MaxUserEntries: 5,
			Filters: []FilterDefinition{
				{"Placement", "placement", FieldTypeName},
				{"Placement ID", "placement_id", FieldTypeID},
				{"Campaign", "campaign", FieldTypeName},
				{"Campaign ID", "campaign_id", FieldTypeID},
				{"Browser Platform", "browser_platform", FieldTypeName},
				{"Browser Platform ID", "browser_platform_id", FieldTypeName},
				{"dma_region", "dma_region", FieldTypeName},
				{"dma_region_id", "dma_region_id", FieldTypeID},
				{"Advertiser ID", "advertiser_id", FieldTypeID},
				{"Advertiser Name", "advertiser", FieldTypeName},
				{"Site ID", "site_id", FieldTypeID},
				{"Site", "site", FieldTypeName},
			},
			Operators: AllOperators(),
		},
		OptionalFiltersParams: defaultOptionalFilters(),
	}
	mustResolve(cfg)
	return cfg
}

// AttributionDynamicReport is the configuration of the path analysis report.
func AttributionDynamicReport(name string) *ReportConfig {
	cfg := &ReportConfig{
		Name: name,
		Kind: QueryKindPathAnalysis,
		ReportParams: []ReportParam{
			{
				DisplayName:    "Activity IDs",
				ParamType:      ParamTypeFreeText,
				ValueType:      ValueTypeArrayOfNumbers,
				DefaultValue:   "0,0",
				QueryParamName: ParamActivityIDs,
			},
			{
				DisplayName:    "Path length",
				ParamType:      ParamTypeFreeText,
				ValueType:      ValueTypeNumber,
				DefaultValue:   "0",
				QueryParamName: ParamPathLength,
			},
		},
		GroupingParams: FilterParams{
			MaxUserEntries: 5,
			Filters: []FilterDefinition{
				{"Advertiser", "advertiser", FieldTypeName},
				{"Advertiser ID", "advertiser_id", FieldTypeID},
				{"Placement", "placement", FieldTypeName},
				{"Placement_ID", "placement_id", FieldTypeID},
				{"Site", "site", FieldTypeName},
				{"Site ID", "site_id", FieldTypeID},
				{"Campaign", "campaign", FieldTypeName},
				{"Campaign ID", "campaign_id", FieldTypeID},
				{"Browser Platform ID", "browser_platform_id", FieldTypeName},
				{"Browser Platform", "browser_platform", FieldTypeName},
				{"DMA region id", "dma_region_id", FieldTypeID},
				{"DMA region", "dma_region", FieldTypeName},
			},
			Operators: AllOperators(),
		},
		OptionalFiltersParams: defaultOptionalFilters(),
	}
	mustResolve(cfg)
	return cfg
}

func defaultOptionalFilters() FilterParams {
	return FilterParams{
		MaxUserEntries: 5,
		Filters: []FilterDefinition{
			{"Advertiser ID", "advertiser_id", FieldTypeID},
			{"Advertiser Name", "advertiser", FieldTypeName},
			{"Placement", "placement", FieldTypeName},
			{"Placement ID", "placement_id", FieldTypeID},
			{"Campaign", "campaign", FieldTypeName},
			{"Campaign ID", "campaign_id", FieldTypeID},
			{"Site ID", "site_id", FieldTypeID},
			{"Site", "site", FieldTypeName},
		},
		Operators: AllOperators(),
	}
}

func mustResolve(cfg *ReportConfig) {
	if err := cfg.Resolve(); err != nil {
		panic(err)
	}
}
