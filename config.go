package txbench

const (
	// BasicDB
	ConfigBasicDBVerbose          = "basicdb.verbose"
	ConfigBasicDBVerboseDefault   = "false"
	ConfigSimulateDelay           = "basicdb.simulatedelay"
	ConfigSimulateDelayDefault    = "0"
	ConfigRandomizeDelay          = "basicdb.randomizedelay"
	ConfigRandomizeDelayDefault   = "true"
	ConfigAbortProbability        = "basicdb.abortprobability"
	ConfigAbortProbabilityDefault = "0"

	// Client
	// The database class to be used.
	PropertyDB        = "db"
	PropertyDBDefault = "basic"
	// The exporter class to be used. The default is TextMeasurementExporter.
	PropertyExporter        = "exporter"
	PropertyExporterDefault = "TextMeasurementExporter"
	// If set to the path of a file, the report will be written there instead
	// of stderr. The path may contain strftime conversions, e.g.
	// "bench-%Y%m%d-%H%M%S.log", expanded when the run starts.
	PropertyExportFile = "exportfile"
	// If set to the path of a file, the measurement export goes there
	// instead of stdout. Same strftime expansion as exportfile.
	PropertyMeasurementFile = "measurementfile"
	// Seconds between status lines during the run, 0 disables them.
	PropertyStatusInterval        = "status.interval"
	PropertyStatusIntervalDefault = "0"
	// One of verbose, debug, info, warn, error, quiet.
	PropertyLogLevel        = "loglevel"
	PropertyLogLevelDefault = "info"
	// If set to the path of a file, log lines go there instead of stderr.
	// Same strftime expansion as exportfile.
	PropertyLogFile = "logfile"

	// workload
	// How long to run, in seconds.
	PropertyDuration        = "duration"
	PropertyDurationDefault = "10"
	// Number of operations in every transaction.
	PropertyTxnLen        = "txnlen"
	PropertyTxnLenDefault = "10"
	// Percentage of operations that are writes, 0-100.
	PropertyWritePercent        = "writepercent"
	PropertyWritePercentDefault = "50"
	// Number of keys read from the key file.
	PropertyKeyCount        = "keycount"
	PropertyKeyCountDefault = "100"
	// Path of the key file, one key per line.
	PropertyKeyFile = "keyfile"
	// Zipfian shape parameter; a negative value selects uniform keys.
	PropertyZipfAlpha        = "zipf.alpha"
	PropertyZipfAlphaDefault = "-1"
	// The name of the property for the distribution of requests
	// across the keyspace. Options are "uniform", "zipfian" and "hotspot".
	// When absent the distribution follows zipf.alpha.
	PropertyRequestDistribution = "requestdistribution"
	// Percentage data items that constitute the hot set.
	HotspotDataFraction = "hotspotdatafraction"
	// The default value of `HotspotDataFraction`
	HotspotDataFractionDefault = "0.2"
	// Percentage opertions that access the hot set.
	HotspotOpnFraction = "hotspotopnfraction"
	// The default value of `HotspotOpnFraction`
	HotspotOpnFractionDefault = "0.8"
	// Seed of the random source, 0 seeds from the clock.
	PropertySeed        = "seed"
	PropertySeedDefault = "0"
	// Length of the random value written by every put. 0 writes the key
	// itself as the value.
	PropertyValueSize        = "valuesize"
	PropertyValueSizeDefault = "0"

	// measurement
	PropertyMeasurementType        = "measurementtype"
	PropertyMeasurementTypeDefault = "hdrhistogram"

	Buckets        = "histogram.buckets"
	BucketsDefault = "1000"

	// The name of the property for deciding what percentile values to output.
	PropertyPercentiles = "hdrhistogram.percentiles"
	// The default value of `PropertyPercentiles`
	PropertyPercentilesDefault = "50,95,99"
	// Highest latency(us) the histogram tracks.
	PropertyHdrHistogramMax        = "hdrhistogram.max"
	PropertyHdrHistogramMaxDefault = "60000000"
	// Number of significant value digits kept by the histogram.
	PropertyHdrHistogramSig        = "hdrhistogram.sig"
	PropertyHdrHistogramSigDefault = "3"
)
