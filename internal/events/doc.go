// Package events provides types and interfaces for observing the task
// lifecycle.
//
// The task orchestrator emits a TaskEvent whenever a task is created,
// changes status, or is deleted. Handlers such as the metrics collector
// react to those events without the orchestrator knowing about them.
//
// The primary components are:
// - TaskEvent: A single lifecycle change of one task
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
// - Dispatcher: Synchronous EventEmitter delivering to named subscribers
package events
