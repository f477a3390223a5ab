/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import "net/http"

const (
	DomainConfig    Domain = "CONFIG"
	DomainServer    Domain = "SERVER"
	DomainLifecycle Domain = "LIFECYCLE"
	DomainMisc      Domain = "MISC"
	DomainCLISpec   Domain = "CLISPEC"
	DomainCommand   Domain = "COMMAND"
	DomainResponse  Domain = "RESPONSE"
	DomainTransport Domain = "TRANSPORT"
	DomainPool      Domain = "POOL"
	DomainAgent     Domain = "AGENT"
)

// ErrorCode represents unique error identifiers
type ErrorCode int

// Domain represents the subsystem where the error originated
type Domain string

// GatewayError is the structured error type carried across svcgate: through
// the CLISpec parser, the command registry, the SSH transport and pool, the
// agent registry and all the way out through the HTTP facade.
type GatewayError struct {
	Code    ErrorCode `json:"code"`
	Domain  Domain    `json:"domain"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	HTTPStatus int `json:"-"`

	// Metadata carries structured context that doesn't belong in Message:
	// the failing array endpoint, the CMMVC error code, the return code of
	// a CLI invocation, the stderr of a failed command.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1500-1599: Lifecycle management
// 1600-1699: Miscellaneous
// 2000-2099: CLISpec parser errors
// 2100-2199: Command registry & invocation errors
// 2200-2299: Response parser errors
// 2300-2399: SSH transport errors
// 2400-2499: Connection pool errors
// 2500-2599: Agent registry & host facade errors
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound           = 1000 + iota // Config file not found
	ConfigInvalid                          // Invalid config format
	ConfigLoadFailed                       // Failed to load config
	ConfigWriteFailed                      // Failed to write config
	ConfigPermissionDenied                 // Permission denied accessing config
	ConfigDirectoryError                   // Config directory error
	ConfigValidationFailed                 // Config validation failed
	ConfigMarshalFailed                    // Config serialization failed
	ConfigUnmarshalFailed                  // Config deserialization failed
	ConfigHomeDirectoryError               // Error getting home directory
	ConfigReadError                        // Error reading config
	ConfigWriteError                       // Error writing config
	ConfigParseError                       // Error parsing config
)

const (
	// Server Errors (1100-1199)
	ServerStart             = 1100 + iota // Failed to start server
	ServerShutdown                        // Error during shutdown
	ServerBind                            // Failed to bind port
	ServerTimeout                         // Operation timeout
	ServerMiddleware                      // Middleware error
	ServerRouting                         // Routing error
	ServerRequestValidation               // Request validation failed
	ServerResponseError                   // Response generation error
	ServerContextCancelled                // Context cancelled
	ServerTLSError                        // TLS configuration error
	ServerInternalError
	ServerBadRequest // Bad request error
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID      = 1500 + iota // PID file operation failed
	LifecycleShutdown               // Shutdown process error
	LifecycleSignal                 // Signal handling error
	LifecycleReload                 // Config reload failed
	LifecycleHook                   // Lifecycle hook error
	LifecycleState                  // State transition error
	LifecycleLock                   // Lock acquisition failed
	LifecycleCleanup                // Cleanup operation failed
	LifecycleDaemon                 // Daemon operation failed
	LifecycleResource               // Resource management error
)

const (
	// Miscellaneous (1600-1699)
	Misc          = 1600 + iota // Miscellaneous program error
	FSError                     // Filesystem error
	NotFoundError               // Not found
	LoggerError                 // Logger error
)

const (
	// CLISpec Parser Errors (2000-2099)
	CLISpecParseFailed     = 2000 + iota // XML document failed to parse
	CLISpecSchemaUnsupported              // Unsupported CLISpec schema version
	CLISpecMissingField                   // A required XML field/attribute is missing
	CLISpecInvalidField                   // A field has an unrecognized/invalid value
	CLISpecDecompressFailed               // CompressedCommands failed to decode/inflate
	CLISpecNameCollision                  // Canonical-name collision exhausted the suffix alphabet
	CLISpecDuplicateCommand                // Duplicate command name registered
	CLISpecResponseTypeUnknown             // Response type named in spec has no parser
)

const (
	// Command Registry & Invocation Errors (2100-2199)
	CommandNotFound        = 2100 + iota // No command registered under that name
	CommandMissingArg                    // A required argument was not supplied
	CommandUnknownArg                    // An argument name not declared by the command
	CommandInvalidChoice                 // Argument value not among declared choices
	CommandBuildFailed                   // Failed to assemble the shell command line
	CommandInvocationFailed              // The command ran but the transport reported failure
	CommandRetriesExhausted              // Exhausted retry budget on a busy-metadata failure
)

const (
	// Response Parser Errors (2200-2299)
	ResponseCLIFailure     = 2200 + iota // The CLI itself reported a non-zero return code
	ResponseParseFailed                  // The response body could not be parsed into records
	ResponseHeaderAmbiguous              // Header-detection heuristic could not decide
	ResponseLoginFailed                  // Embedded login-failure sentinel detected
	ResponseUnexpectedShape              // Parsed shape didn't match the declared response type
)

const (
	// SSH Transport Errors (2300-2399)
	TransportConnectFailed       = 2300 + iota // Failed to establish the SSH session
	TransportAuthFailed                        // Authentication rejected by the array
	TransportHostKeyMismatch                   // Host key didn't match known_hosts
	TransportTimeout                           // Command execution timed out on the channel
	TransportDisconnected                      // Session dropped and reconnect failed
	TransportHostUnreachable                   // DNS/network failure reaching the array
	TransportChannelFailed                     // Failed to open a command channel
)

const (
	// Connection Pool Errors (2400-2499)
	PoolExhausted     = 2400 + iota // No connection available and pool is at max size
	PoolClosed                      // Pool has been shut down
	PoolCheckoutFailed              // Failed to create a replacement connection on checkout
	PoolInvalidSize                 // Requested pool resize is invalid
)

const (
	// Agent Registry & Host Facade Errors (2500-2599)
	AgentCredentialMismatch = 2500 + iota // Cached agent has different credentials
	AgentArrayError                       // Array returned a genuine (non-preprocessed) CMMVC error
	AgentHostNotFound                     // lshost / rmhost target does not exist
	AgentHostAlreadyExists                // mkhost target already exists
	AgentSpecNotFound                     // No CLISpec available for the array, live or bundled
)

var errorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	ConfigNotFound: {"Configuration file not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:  {"Invalid configuration format", DomainConfig, http.StatusBadRequest},
	ConfigLoadFailed: {
		"Failed to load configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigWriteFailed: {
		"Failed to write configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigPermissionDenied: {
		"Permission denied accessing config",
		DomainConfig,
		http.StatusForbidden,
	},
	ConfigDirectoryError: {
		"Config directory error",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigValidationFailed: {
		"Configuration validation failed",
		DomainConfig,
		http.StatusBadRequest,
	},
	ConfigMarshalFailed: {
		"Failed to serialize configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigUnmarshalFailed: {
		"Failed to deserialize configuration",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigHomeDirectoryError: {
		"Failed to get home directory",
		DomainConfig,
		http.StatusInternalServerError,
	},
	ConfigReadError:  {"Error reading configuration", DomainConfig, http.StatusInternalServerError},
	ConfigWriteError: {"Error writing configuration", DomainConfig, http.StatusInternalServerError},
	ConfigParseError: {"Error parsing configuration", DomainConfig, http.StatusInternalServerError},

	ServerStart:    {"Failed to start server", DomainServer, http.StatusInternalServerError},
	ServerShutdown: {"Error during server shutdown", DomainServer, http.StatusInternalServerError},
	ServerBind:     {"Failed to bind server port", DomainServer, http.StatusInternalServerError},
	ServerTimeout:  {"Server operation timed out", DomainServer, http.StatusGatewayTimeout},
	ServerMiddleware: {
		"Middleware execution failed",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerRouting:           {"Route handling error", DomainServer, http.StatusInternalServerError},
	ServerRequestValidation: {"Request validation failed", DomainServer, http.StatusBadRequest},
	ServerResponseError: {
		"Error generating response",
		DomainServer,
		http.StatusInternalServerError,
	},
	ServerContextCancelled: {
		"Server context cancelled",
		DomainServer,
		http.StatusServiceUnavailable,
	},
	ServerTLSError:   {"TLS configuration error", DomainServer, http.StatusInternalServerError},
	ServerBadRequest: {"Bad request error", DomainServer, http.StatusBadRequest},
	ServerInternalError: {
		"Internal server error",
		DomainServer,
		http.StatusInternalServerError,
	},

	LifecyclePID: {"PID file operation failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleShutdown: {
		"Error during shutdown process",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleSignal: {"Signal handling error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleReload: {
		"Configuration reload failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleHook: {
		"Lifecycle hook execution failed",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleState: {
		"Invalid lifecycle state transition",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleLock: {
		"Failed to acquire lifecycle lock",
		DomainLifecycle,
		http.StatusInternalServerError,
	},
	LifecycleCleanup: {"Lifecycle cleanup failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleDaemon:  {"Daemon operation failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleResource: {
		"Resource management error",
		DomainLifecycle,
		http.StatusInternalServerError,
	},

	Misc:          {"Miscellaneous program error", DomainMisc, http.StatusInternalServerError},
	FSError:       {"Filesystem error", DomainMisc, http.StatusInternalServerError},
	NotFoundError: {"Not found", DomainMisc, http.StatusNotFound},
	LoggerError:   {"Logger error", DomainMisc, http.StatusInternalServerError},

	CLISpecParseFailed: {
		"Failed to parse CLISpec document",
		DomainCLISpec,
		http.StatusInternalServerError,
	},
	CLISpecSchemaUnsupported: {
		"Unsupported CLISpec schema version",
		DomainCLISpec,
		http.StatusBadRequest,
	},
	CLISpecMissingField: {
		"CLISpec document is missing a required field",
		DomainCLISpec,
		http.StatusBadRequest,
	},
	CLISpecInvalidField: {
		"CLISpec field has an invalid value",
		DomainCLISpec,
		http.StatusBadRequest,
	},
	CLISpecDecompressFailed: {
		"Failed to decompress CompressedCommands block",
		DomainCLISpec,
		http.StatusInternalServerError,
	},
	CLISpecNameCollision: {
		"Canonical command name collision exhausted the suffix alphabet",
		DomainCLISpec,
		http.StatusInternalServerError,
	},
	CLISpecDuplicateCommand: {
		"Duplicate command name in CLISpec document",
		DomainCLISpec,
		http.StatusBadRequest,
	},
	CLISpecResponseTypeUnknown: {
		"CLISpec response type has no registered parser",
		DomainCLISpec,
		http.StatusBadRequest,
	},

	CommandNotFound: {"Command not registered", DomainCommand, http.StatusNotFound},
	CommandMissingArg: {
		"Required command argument missing",
		DomainCommand,
		http.StatusBadRequest,
	},
	CommandUnknownArg: {
		"Unknown command argument",
		DomainCommand,
		http.StatusBadRequest,
	},
	CommandInvalidChoice: {
		"Argument value not among declared choices",
		DomainCommand,
		http.StatusBadRequest,
	},
	CommandBuildFailed: {
		"Failed to assemble command line",
		DomainCommand,
		http.StatusInternalServerError,
	},
	CommandInvocationFailed: {
		"Command invocation failed",
		DomainCommand,
		http.StatusBadGateway,
	},
	CommandRetriesExhausted: {
		"Exhausted retries on busy metadata",
		DomainCommand,
		http.StatusServiceUnavailable,
	},

	ResponseCLIFailure: {"CLI reported failure", DomainResponse, http.StatusBadGateway},
	ResponseParseFailed: {
		"Failed to parse CLI response",
		DomainResponse,
		http.StatusInternalServerError,
	},
	ResponseHeaderAmbiguous: {
		"Could not determine whether response has a header row",
		DomainResponse,
		http.StatusInternalServerError,
	},
	ResponseLoginFailed: {
		"Array rejected login credentials",
		DomainResponse,
		http.StatusUnauthorized,
	},
	ResponseUnexpectedShape: {
		"Parsed response did not match declared shape",
		DomainResponse,
		http.StatusInternalServerError,
	},

	TransportConnectFailed: {
		"Failed to establish SSH session",
		DomainTransport,
		http.StatusBadGateway,
	},
	TransportAuthFailed: {
		"SSH authentication rejected",
		DomainTransport,
		http.StatusUnauthorized,
	},
	TransportHostKeyMismatch: {
		"SSH host key did not match known_hosts",
		DomainTransport,
		http.StatusUnauthorized,
	},
	TransportTimeout: {
		"SSH command execution timed out",
		DomainTransport,
		http.StatusGatewayTimeout,
	},
	TransportDisconnected: {
		"SSH session disconnected and reconnect failed",
		DomainTransport,
		http.StatusBadGateway,
	},
	TransportHostUnreachable: {
		"Array host is unreachable",
		DomainTransport,
		http.StatusBadGateway,
	},
	TransportChannelFailed: {
		"Failed to open SSH command channel",
		DomainTransport,
		http.StatusBadGateway,
	},

	PoolExhausted: {"Connection pool exhausted", DomainPool, http.StatusServiceUnavailable},
	PoolClosed:    {"Connection pool is closed", DomainPool, http.StatusServiceUnavailable},
	PoolCheckoutFailed: {
		"Failed to create replacement connection",
		DomainPool,
		http.StatusBadGateway,
	},
	PoolInvalidSize: {"Invalid pool size", DomainPool, http.StatusBadRequest},

	AgentCredentialMismatch: {
		"Cached agent has different credentials",
		DomainAgent,
		http.StatusConflict,
	},
	AgentArrayError:        {"Array returned an error", DomainAgent, http.StatusBadGateway},
	AgentHostNotFound:      {"Host not found on array", DomainAgent, http.StatusNotFound},
	AgentHostAlreadyExists: {"Host already exists on array", DomainAgent, http.StatusConflict},
	AgentSpecNotFound: {
		"No CLISpec document available for this array",
		DomainAgent,
		http.StatusInternalServerError,
	},
}
