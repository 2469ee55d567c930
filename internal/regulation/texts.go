package regulation

// Reference requirement text sent to the model for each known framework.
const (
	gdprText = `
General Data Protection Regulation (GDPR) Requirements:

1. DATA PROTECTION PRINCIPLES:
- Lawfulness, fairness, and transparency
- Purpose limitation
- Data minimization
- Accuracy
- Storage limitation
- Integrity and confidentiality
- Accountability

2. INDIVIDUAL RIGHTS:
- Right to be informed
- Right of access
- Right to rectification
- Right to erasure
- Right to restrict processing
- Right to data portability
- Right to object
- Rights in relation to automated decision making

3. ORGANIZATIONAL REQUIREMENTS:
- Data protection by design and by default
- Data protection impact assessments
- Data protection officer appointment
- Record of processing activities
- Security measures
- Breach notification procedures
- Cross-border data transfer safeguards

4. ACCOUNTABILITY MEASURES:
- Documentation and record keeping
- Staff training and awareness
- Regular audits and assessments
- Incident response procedures
- Vendor management and contracts
`

	nistText = `
NIST Cybersecurity Framework Requirements:

1. IDENTIFY:
- Asset management
- Business environment
- Governance
- Risk assessment
- Risk management strategy
- Supply chain risk management

2. PROTECT:
- Identity management and access control
- Awareness and training
- Data security
- Information protection processes and procedures
- Maintenance
- Protective technology

3. DETECT:
- Anomalies and events
- Security continuous monitoring
- Detection processes

4. RESPOND:
- Response planning
- Communications
- Analysis
- Mitigation
- Improvements

5. RECOVER:
- Recovery planning
- Improvements
- Communications
`

	hipaaText = `
Health Insurance Portability and Accountability Act (HIPAA) Requirements:

1. PRIVACY RULE:
- Notice of privacy practices
- Individual rights
- Uses and disclosures
- Administrative requirements
- Training and awareness

2. SECURITY RULE:
- Administrative safeguards
- Physical safeguards
- Technical safeguards
- Organizational requirements
- Policies and procedures

3. BREACH NOTIFICATION RULE:
- Breach assessment
- Notification procedures
- Documentation requirements

4. ENFORCEMENT RULE:
- Compliance monitoring
- Penalties and sanctions
- Resolution procedures
`

	iso27001Text = `
ISO/IEC 27001 Information Security Management System Requirements:

1. CONTEXT OF THE ORGANIZATION:
- Understanding the organization and its context
- Understanding the needs and expectations of interested parties
- Determining the scope of the ISMS
- Information security management system

2. LEADERSHIP:
- Leadership and commitment
- Policy
- Organizational roles, responsibilities, and authorities

3. PLANNING:
- Actions to address risks and opportunities
- Information security objectives and planning to achieve them

4. SUPPORT:
- Resources
- Competence
- Awareness
- Communication
- Documented information

5. OPERATION:
- Operational planning and control
- Information security risk assessment
- Information security risk treatment

6. PERFORMANCE EVALUATION:
- Monitoring, measurement, analysis, and evaluation
- Internal audit
- Management review

7. IMPROVEMENT:
- Nonconformity and corrective action
- Continual improvement
`
)
