// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - connection.*
//   - agent.*
//   - listening.*
//   - transcript.*
//   - prompt.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Appended: immutable entry added to an append-only sequence.
//   - Changed: lifecycle/state transition on a tracked resource.
//
// connection events
//
//   - ConnectionStateChanged (connection.state_changed): the session's room
//     connection moved to a new state.
//
// agent events
//
//   - AgentStateChanged (agent.state_changed): the tracked agent's display
//     state changed (resolution, departure, remote attribute update, or
//     discovery-wait expiry).
//   - AgentTrackChanged (agent.track_changed): a media track of the tracked
//     agent was subscribed or unsubscribed.
//
// listening events
//
//   - ListeningStateChanged (listening.state_changed): speech capture was
//     started or stopped.
//
// transcript events
//
//   - TranscriptAppended (transcript.appended): a finalized user or agent
//     entry was added.
//   - TranscriptInterimUpdated (transcript.interim_updated): the mutable
//     interim entry was replaced (empty transcript clears it).
//   - PendingReplyChanged (transcript.pending_reply_changed): the reply
//     placeholder was shown or removed.
//
// prompt events
//
//   - PromptPushStateChanged (prompt.push_state_changed): an instruction
//     push attempt resolved or its status display expired.
package events
