// Package model defines the chat model abstraction agents generate with. It
// normalizes provider specific request/response shapes into a single Request
// / Response pair so the agent loop never branches per vendor. Concrete
// adapters for hosted APIs live in the subpackages model/openai and
// model/anthropic; MockModel provides scripted turns for tests and examples.
package model
