package protocol

/*
Changelog
---------

- Version 1 and 2 are the same as version 0 on the request side; version 1
  adds throttle_time_ms to the response.
- Version 2 switches the message format to magic byte 1 (timestamps, KIP-32)
  and adds log_append_time to the response.
- Version 3 adds the transactional ID, which is used for authorization when
  attempting to write transactional data.
- Version 5 adds log_start_offset to the response.
- Starting in Version 8, the response has RecordErrors and ErrorMessage.
  See KIP-467.
- Version 9 and above use the flexible (compact) encoding, which this client
  does not speak.
*/

// ProduceMinVersion and ProduceMaxVersion bound the produce API versions
// this codec can emit and parse.
const (
	ProduceMinVersion int16 = 0
	ProduceMaxVersion int16 = 8
)

// ProduceFeatures captures which optional fields a given produce API version
// carries. It is resolved once at producer construction so the encode and
// decode paths branch on a lookup, not on scattered version comparisons.
type ProduceFeatures struct {
	Version         int16
	TransactionalID bool
	LogAppendTime   bool
	LogStartOffset  bool
	RecordErrors    bool
	ThrottleTime    bool
	MessageMagic    int8
}

var produceFeatures = [ProduceMaxVersion + 1]ProduceFeatures{
	{Version: 0, MessageMagic: 0},
	{Version: 1, MessageMagic: 0, ThrottleTime: true},
	{Version: 2, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true},
	{Version: 3, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true, TransactionalID: true},
	{Version: 4, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true, TransactionalID: true},
	{Version: 5, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true, TransactionalID: true, LogStartOffset: true},
	{Version: 6, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true, TransactionalID: true, LogStartOffset: true},
	{Version: 7, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true, TransactionalID: true, LogStartOffset: true},
	{Version: 8, MessageMagic: 1, ThrottleTime: true, LogAppendTime: true, TransactionalID: true, LogStartOffset: true, RecordErrors: true},
}

// FeaturesForVersion resolves the feature set of a produce API version.
func FeaturesForVersion(apiVersion int16) (ProduceFeatures, error) {
	if apiVersion < ProduceMinVersion || apiVersion > ProduceMaxVersion {
		return ProduceFeatures{}, NewProtocolException("unsupported_version", "Produce API version %d is not supported", apiVersion)
	}
	return produceFeatures[apiVersion], nil
}
