package producer

import (
	"errors"
	"fmt"
)

// KafkaException is a broker-reported error code together with its symbolic
// name and whether Kafka classifies it as retryable. The table below is
// static shared state: every producer instance in the process reads it,
// nobody writes it.
type KafkaException struct {
	Code        int16  `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Retryable   bool   `json:"retryable"`
}

func NewKafkaException(code int16, name string, retryable bool, description string) KafkaException {
	return KafkaException{
		Code:        code,
		Name:        name,
		Description: description,
		Retryable:   retryable,
	}
}

func (e KafkaException) Error() string {
	return fmt.Sprintf("(%s: %d) %s", e.Name, e.Code, e.Description)
}

var (
	ErrUnknownServerError          = NewKafkaException(-1, "UNKNOWN_SERVER_ERROR", false, "The server experienced an unexpected error when processing the request")
	ErrOffsetOutOfRange            = NewKafkaException(1, "OFFSET_OUT_OF_RANGE", false, "The requested offset is not within the range of offsets maintained by the server")
	ErrCorruptMessage              = NewKafkaException(2, "CORRUPT_MESSAGE", true, "This message has failed its CRC checksum or is otherwise corrupt")
	ErrUnknownTopicOrPartition     = NewKafkaException(3, "UNKNOWN_TOPIC_OR_PARTITION", true, "This server does not host this topic-partition")
	ErrInvalidFetchSize            = NewKafkaException(4, "INVALID_FETCH_SIZE", false, "The requested fetch size is invalid")
	ErrLeaderNotAvailable          = NewKafkaException(5, "LEADER_NOT_AVAILABLE", true, "There is no leader for this topic-partition as we are in the middle of a leadership election")
	ErrNotLeaderForPartition       = NewKafkaException(6, "NOT_LEADER_FOR_PARTITION", true, "This server is not the leader for that topic-partition")
	ErrRequestTimedOut             = NewKafkaException(7, "REQUEST_TIMED_OUT", true, "The request timed out")
	ErrBrokerNotAvailable          = NewKafkaException(8, "BROKER_NOT_AVAILABLE", false, "The broker is not available")
	ErrReplicaNotAvailable         = NewKafkaException(9, "REPLICA_NOT_AVAILABLE", false, "The replica is not available for the requested topic-partition")
	ErrMessageTooLarge             = NewKafkaException(10, "MESSAGE_TOO_LARGE", false, "The request included a message larger than the max message size the server will accept")
	ErrStaleControllerEpoch        = NewKafkaException(11, "STALE_CONTROLLER_EPOCH", false, "The controller moved to another broker")
	ErrOffsetMetadataTooLarge      = NewKafkaException(12, "OFFSET_METADATA_TOO_LARGE", false, "The metadata field of the offset request was too large")
	ErrNetworkException            = NewKafkaException(13, "NETWORK_EXCEPTION", true, "The server disconnected before a response was received")
	ErrCoordinatorLoadInProgress   = NewKafkaException(14, "COORDINATOR_LOAD_IN_PROGRESS", true, "The coordinator is loading and hence can't process requests")
	ErrCoordinatorNotAvailable     = NewKafkaException(15, "COORDINATOR_NOT_AVAILABLE", true, "The coordinator is not available")
	ErrNotCoordinator              = NewKafkaException(16, "NOT_COORDINATOR", true, "This is not the correct coordinator")
	ErrInvalidTopic                = NewKafkaException(17, "INVALID_TOPIC_EXCEPTION", false, "The request attempted to perform an operation on an invalid topic")
	ErrRecordListTooLarge          = NewKafkaException(18, "RECORD_LIST_TOO_LARGE", false, "The request included message batch larger than the configured segment size on the server")
	ErrNotEnoughReplicas           = NewKafkaException(19, "NOT_ENOUGH_REPLICAS", true, "Messages are rejected since there are fewer in-sync replicas than required")
	ErrNotEnoughReplicasAfterAppend = NewKafkaException(20, "NOT_ENOUGH_REPLICAS_AFTER_APPEND", true, "Messages are written to the log, but to fewer in-sync replicas than required")
	ErrInvalidRequiredAcks         = NewKafkaException(21, "INVALID_REQUIRED_ACKS", false, "Produce request specified an invalid value for required acks")
	ErrIllegalGeneration           = NewKafkaException(22, "ILLEGAL_GENERATION", false, "Specified group generation id is not valid")
	ErrInconsistentGroupProtocol   = NewKafkaException(23, "INCONSISTENT_GROUP_PROTOCOL", false, "The group member's supported protocols are incompatible with those of existing members")
	ErrInvalidGroupID              = NewKafkaException(24, "INVALID_GROUP_ID", false, "The configured groupId is invalid")
	ErrUnknownMemberID             = NewKafkaException(25, "UNKNOWN_MEMBER_ID", false, "The coordinator is not aware of this member")
	ErrInvalidSessionTimeout       = NewKafkaException(26, "INVALID_SESSION_TIMEOUT", false, "The session timeout is not within the range allowed by the broker")
	ErrRebalanceInProgress         = NewKafkaException(27, "REBALANCE_IN_PROGRESS", false, "The group is rebalancing, so a rejoin is needed")
	ErrInvalidCommitOffsetSize     = NewKafkaException(28, "INVALID_COMMIT_OFFSET_SIZE", false, "The committing offset data size is not valid")
	ErrTopicAuthorizationFailed    = NewKafkaException(29, "TOPIC_AUTHORIZATION_FAILED", false, "Topic authorization failed")
	ErrGroupAuthorizationFailed    = NewKafkaException(30, "GROUP_AUTHORIZATION_FAILED", false, "Group authorization failed")
	ErrClusterAuthorizationFailed  = NewKafkaException(31, "CLUSTER_AUTHORIZATION_FAILED", false, "Cluster authorization failed")
	ErrInvalidTimestamp            = NewKafkaException(32, "INVALID_TIMESTAMP", false, "The timestamp of the message is out of acceptable range")
	ErrUnsupportedSaslMechanism    = NewKafkaException(33, "UNSUPPORTED_SASL_MECHANISM", false, "The broker does not support the requested SASL mechanism")
	ErrIllegalSaslState            = NewKafkaException(34, "ILLEGAL_SASL_STATE", false, "Request is not valid given the current SASL state")
	ErrUnsupportedVersion          = NewKafkaException(35, "UNSUPPORTED_VERSION", false, "The version of API is not supported")
	ErrTopicAlreadyExists          = NewKafkaException(36, "TOPIC_ALREADY_EXISTS", false, "Topic with this name already exists")
	ErrInvalidPartitions           = NewKafkaException(37, "INVALID_PARTITIONS", false, "Number of partitions is below 1")
	ErrInvalidReplicationFactor    = NewKafkaException(38, "INVALID_REPLICATION_FACTOR", false, "Replication factor is below 1 or larger than the number of available brokers")
	ErrInvalidReplicaAssignment    = NewKafkaException(39, "INVALID_REPLICA_ASSIGNMENT", false, "Replica assignment is invalid")
	ErrInvalidConfig               = NewKafkaException(40, "INVALID_CONFIG", false, "Configuration is invalid")
	ErrNotController               = NewKafkaException(41, "NOT_CONTROLLER", true, "This is not the correct controller for this cluster")
	ErrInvalidRequest              = NewKafkaException(42, "INVALID_REQUEST", false, "This most likely occurs because of a request being malformed by the client library")
	ErrUnsupportedForMessageFormat = NewKafkaException(43, "UNSUPPORTED_FOR_MESSAGE_FORMAT", false, "The message format version on the broker does not support the request")
	ErrPolicyViolation             = NewKafkaException(44, "POLICY_VIOLATION", false, "Request parameters do not satisfy the configured policy")
	ErrOutOfOrderSequenceNumber    = NewKafkaException(45, "OUT_OF_ORDER_SEQUENCE_NUMBER", false, "The broker received an out of order sequence number")
	ErrDuplicateSequenceNumber     = NewKafkaException(46, "DUPLICATE_SEQUENCE_NUMBER", false, "The broker received a duplicate sequence number")
	ErrInvalidProducerEpoch        = NewKafkaException(47, "INVALID_PRODUCER_EPOCH", false, "Producer attempted an operation with an old epoch")
	ErrInvalidTxnState             = NewKafkaException(48, "INVALID_TXN_STATE", false, "The producer attempted a transactional operation in an invalid state")
	ErrInvalidProducerIDMapping    = NewKafkaException(49, "INVALID_PRODUCER_ID_MAPPING", false, "The producer attempted to use a producer id which is not currently assigned to its transactional id")
	ErrInvalidTransactionTimeout   = NewKafkaException(50, "INVALID_TRANSACTION_TIMEOUT", false, "The transaction timeout is larger than the maximum value allowed by the broker")
	ErrConcurrentTransactions      = NewKafkaException(51, "CONCURRENT_TRANSACTIONS", false, "The producer attempted to update a transaction while another concurrent operation on the same transaction was ongoing")
	ErrTransactionCoordinatorFenced = NewKafkaException(52, "TRANSACTION_COORDINATOR_FENCED", false, "The transaction coordinator sending a WriteTxnMarker is no longer the current coordinator for a given producer")
	ErrTransactionalIDAuthorizationFailed = NewKafkaException(53, "TRANSACTIONAL_ID_AUTHORIZATION_FAILED", false, "Transactional id authorization failed")
	ErrSecurityDisabled            = NewKafkaException(54, "SECURITY_DISABLED", false, "Security features are disabled")
	ErrOperationNotAttempted       = NewKafkaException(55, "OPERATION_NOT_ATTEMPTED", false, "The broker did not attempt to execute this operation")
	ErrKafkaStorageError           = NewKafkaException(56, "KAFKA_STORAGE_ERROR", true, "Disk error when trying to access log file on the disk")
	ErrLogDirNotFound              = NewKafkaException(57, "LOG_DIR_NOT_FOUND", false, "The user-specified log directory is not found in the broker config")
	ErrSaslAuthenticationFailed    = NewKafkaException(58, "SASL_AUTHENTICATION_FAILED", false, "SASL Authentication failed")
	ErrUnknownProducerID           = NewKafkaException(59, "UNKNOWN_PRODUCER_ID", false, "The broker could not locate the producer metadata associated with the producer id")
	ErrReassignmentInProgress      = NewKafkaException(60, "REASSIGNMENT_IN_PROGRESS", false, "A partition reassignment is in progress")
	ErrFencedLeaderEpoch           = NewKafkaException(74, "FENCED_LEADER_EPOCH", true, "The leader epoch in the request is older than the epoch on the broker")
	ErrUnknownLeaderEpoch          = NewKafkaException(75, "UNKNOWN_LEADER_EPOCH", true, "The leader epoch in the request is newer than the epoch on the broker")
	ErrUnsupportedCompressionType  = NewKafkaException(76, "UNSUPPORTED_COMPRESSION_TYPE", false, "The requesting client does not support the compression type of given partition")
)

var exceptions = map[int16]KafkaException{}

func init() {
	for _, e := range []KafkaException{
		ErrUnknownServerError, ErrOffsetOutOfRange, ErrCorruptMessage,
		ErrUnknownTopicOrPartition, ErrInvalidFetchSize, ErrLeaderNotAvailable,
		ErrNotLeaderForPartition, ErrRequestTimedOut, ErrBrokerNotAvailable,
		ErrReplicaNotAvailable, ErrMessageTooLarge, ErrStaleControllerEpoch,
		ErrOffsetMetadataTooLarge, ErrNetworkException, ErrCoordinatorLoadInProgress,
		ErrCoordinatorNotAvailable, ErrNotCoordinator, ErrInvalidTopic,
		ErrRecordListTooLarge, ErrNotEnoughReplicas, ErrNotEnoughReplicasAfterAppend,
		ErrInvalidRequiredAcks, ErrIllegalGeneration, ErrInconsistentGroupProtocol,
		ErrInvalidGroupID, ErrUnknownMemberID, ErrInvalidSessionTimeout,
		ErrRebalanceInProgress, ErrInvalidCommitOffsetSize, ErrTopicAuthorizationFailed,
		ErrGroupAuthorizationFailed, ErrClusterAuthorizationFailed, ErrInvalidTimestamp,
		ErrUnsupportedSaslMechanism, ErrIllegalSaslState, ErrUnsupportedVersion,
		ErrTopicAlreadyExists, ErrInvalidPartitions, ErrInvalidReplicationFactor,
		ErrInvalidReplicaAssignment, ErrInvalidConfig, ErrNotController,
		ErrInvalidRequest, ErrUnsupportedForMessageFormat, ErrPolicyViolation,
		ErrOutOfOrderSequenceNumber, ErrDuplicateSequenceNumber, ErrInvalidProducerEpoch,
		ErrInvalidTxnState, ErrInvalidProducerIDMapping, ErrInvalidTransactionTimeout,
		ErrConcurrentTransactions, ErrTransactionCoordinatorFenced,
		ErrTransactionalIDAuthorizationFailed, ErrSecurityDisabled,
		ErrOperationNotAttempted, ErrKafkaStorageError, ErrLogDirNotFound,
		ErrSaslAuthenticationFailed, ErrUnknownProducerID, ErrReassignmentInProgress,
		ErrFencedLeaderEpoch, ErrUnknownLeaderEpoch, ErrUnsupportedCompressionType,
	} {
		exceptions[e.Code] = e
	}
}

// ExceptionForCode resolves a broker error code against the static table.
// Code 0 is success and returns nil; codes the table does not know collapse
// to UNKNOWN_SERVER_ERROR with the raw code preserved.
func ExceptionForCode(code int16) error {
	if code == 0 {
		return nil
	}
	if e, ok := exceptions[code]; ok {
		return e
	}
	e := ErrUnknownServerError
	e.Code = code
	return e
}

// NetworkError wraps a transport failure. Network failures are always
// retryable: the dominant cause is a dead or demoted leader, which a
// metadata refresh plus resubmission resolves.
type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// RecordError is the per-record failure a v8 response can attach to an
// otherwise successful partition.
type RecordError struct {
	BatchIndex int32
	Message    string
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record rejected at batch index %d: %s", e.BatchIndex, e.Message)
}

var (
	// ErrBufferFull is returned by Enqueue when the ring buffer is at
	// capacity and either blocking is disabled or the wait timed out.
	ErrBufferFull = errors.New("gregor: ring buffer full")
	// ErrProducerClosed is returned once Close has begun.
	ErrProducerClosed = errors.New("gregor: producer closed")
)

// IsRetryable reports whether the producer may resubmit after err.
func IsRetryable(err error) bool {
	switch e := err.(type) {
	case KafkaException:
		return e.Retryable
	case NetworkError:
		return true
	default:
		return false
	}
}
