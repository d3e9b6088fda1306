// Package trigger owns the expression slots of a show's triggers: it
// compiles snippet text into installed expressions, keeps a previously
// installed expression when a recompile fails, and walks each trigger's
// active/inactive edge as events arrive, firing the activation and
// deactivation expressions on the transitions.
package trigger
