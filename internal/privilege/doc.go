// Decides how the pipeline escalates privileges.
//
// Building an ISO touches root-owned paths: cleaning a work directory left
// behind by an earlier escalated run, running the image builder, and fixing
// artifact ownership afterwards. The resolver runs once before any of that,
// producing a command prefix ("doas" or "sudo" for unprivileged users,
// nothing for root) that the rest of the pipeline applies to privileged
// invocations.
package privilege
