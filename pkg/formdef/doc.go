// Package formdef loads operator definitions declared in YAML or JSON files.
//
// A definition file declares one or more operators:
//
//	operators:
//	  export_samples:
//	    label: Export samples
//	    inputs:
//	      path:
//	        type: string
//	        required: true
//	      format:
//	        type: enum
//	        values: [csv, json]
//	        view:
//	          kind: dropdown
//	    triggers:
//	      on_success:
//	        operator: reload_dataset
//
// Property order inside inputs, outputs and nested properties follows the
// file, so the resulting forms render in the order they were written.
package formdef
